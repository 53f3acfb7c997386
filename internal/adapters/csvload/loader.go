package csvload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

// Loader reads a complete optimization dataset out of a directory of CSV
// exports. One Loader may load many directories.
type Loader struct {
	logger common.Logger
}

// NewLoader creates a Loader. A nil logger discards load progress.
func NewLoader(logger common.Logger) *Loader {
	if logger == nil {
		logger = common.NopLogger()
	}
	return &Loader{logger: logger}
}

// LoadDataset reads the five canonical files (<kind>.csv) from dataDir and
// assembles them into a dataset. Cross-file referential checks are not done
// here; the optimizer validates the assembled dataset before running.
func (l *Loader) LoadDataset(dataDir string) (*common.Dataset, error) {
	locations, err := openAndParse(dataDir, FileLocations, ParseLocations)
	if err != nil {
		return nil, err
	}
	l.logger.Log("info", fmt.Sprintf("loaded %d locations", len(locations)), nil)

	edges, err := openAndParse(dataDir, FileRelations, ParseEdges)
	if err != nil {
		return nil, err
	}
	l.logger.Log("info", fmt.Sprintf("loaded %d location relations", len(edges)), nil)

	vehicles, err := openAndParse(dataDir, FileVehicles, ParseVehicles)
	if err != nil {
		return nil, err
	}
	l.logger.Log("info", fmt.Sprintf("loaded %d vehicles", len(vehicles)), nil)

	segments, err := openAndParse(dataDir, FileSegments, ParseSegments)
	if err != nil {
		return nil, err
	}
	rows, err := openAndParse(dataDir, FileRoutes, ParseRouteRows)
	if err != nil {
		return nil, err
	}
	routes, err := BuildRoutes(rows, segments, l.logger)
	if err != nil {
		return nil, err
	}
	l.logger.Log("info", fmt.Sprintf("loaded %d routes", len(routes)), nil)

	return &common.Dataset{
		Locations: locations,
		Edges:     edges,
		Vehicles:  vehicles,
		Routes:    routes,
	}, nil
}

// BuildRoutes attaches segments to route rows and returns domain routes in
// chronological order. Routes without segments have no start location, so
// they are dropped with a warning rather than failing the load.
func BuildRoutes(rows []RouteRow, segments map[int64][]schedule.Segment, logger common.Logger) ([]*schedule.Route, error) {
	if logger == nil {
		logger = common.NopLogger()
	}
	routes := make([]*schedule.Route, 0, len(rows))
	for i, row := range rows {
		segs := segments[row.ID]
		if len(segs) == 0 {
			logger.Log("warn", fmt.Sprintf("route %d has no segments, dropped", row.ID), nil)
			continue
		}
		route, err := schedule.NewRoute(row.ID, row.StartTime, row.EndTime, row.DistanceKm, segs)
		if err != nil {
			return nil, shared.NewInputInvalidError(FileRoutes, i+1, err.Error())
		}
		routes = append(routes, route)
	}
	schedule.SortChronological(routes)
	return routes, nil
}

func openAndParse[T any](dataDir, file string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(filepath.Join(dataDir, file+".csv"))
	if err != nil {
		return zero, shared.NewInputInvalidError(file, 0, err.Error())
	}
	defer f.Close()
	return parse(f)
}
