package csvload

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

// maxPreviewProblems caps the problems listed per file; rows keep being
// counted past the cap.
const maxPreviewProblems = 10

// Validation is the schema-check result for one uploaded file.
type Validation struct {
	Kind     string   `json:"kind"`
	Rows     int      `json:"rows"`
	Problems []string `json:"problems,omitempty"`
}

// OK reports whether the file passed without problems.
func (v Validation) OK() bool {
	return len(v.Problems) == 0
}

type fileSpec struct {
	columns []string
	check   func(*fields) error
}

var fileSpecs = map[string]fileSpec{
	FileLocations: {locationColumns, func(f *fields) error {
		_, err := parseLocationRow(f)
		return err
	}},
	FileRelations: {relationColumns, func(f *fields) error {
		_, err := parseEdgeRow(f)
		return err
	}},
	FileRoutes: {routeColumns, func(f *fields) error {
		_, err := parseRouteRow(f)
		return err
	}},
	FileSegments: {segmentColumns, func(f *fields) error {
		_, err := parseSegmentRow(f)
		return err
	}},
	FileVehicles: {vehicleColumns, func(f *fields) error {
		_, err := parseVehicleRow(f)
		return err
	}},
}

// ValidateFile schema-checks one CSV stream of the given kind. Unlike the
// Parse functions it does not stop at the first bad row: it counts every
// row and collects a bounded preview of problems. The error return is only
// for an unknown kind.
func ValidateFile(kind string, r io.Reader) (*Validation, error) {
	spec, ok := fileSpecs[kind]
	if !ok {
		return nil, shared.NewValidationError("type", "unknown file type: "+kind)
	}

	result := &Validation{Kind: kind}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		result.Problems = append(result.Problems, "empty file")
		return result, nil
	}
	if err != nil {
		result.Problems = append(result.Problems, err.Error())
		return result, nil
	}
	idx := indexColumns(header)
	if missing := missingColumns(idx, spec.columns); len(missing) > 0 {
		result.Problems = append(result.Problems, "missing columns: "+strings.Join(missing, ", "))
		return result, nil
	}

	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.addProblem(row, err.Error())
			continue
		}
		result.Rows++
		if err := spec.check(&fields{rec: rec, cols: idx}); err != nil {
			result.addProblem(row, err.Error())
		}
	}
	return result, nil
}

func (v *Validation) addProblem(row int, msg string) {
	if len(v.Problems) >= maxPreviewProblems {
		return
	}
	v.Problems = append(v.Problems, fmt.Sprintf("row %d: %s", row, msg))
}
