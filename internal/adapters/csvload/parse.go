package csvload

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

// File kinds, matching both the canonical file names (<kind>.csv) and the
// `type` field of the upload endpoints.
const (
	FileLocations = "locations"
	FileRelations = "locations_relations"
	FileRoutes    = "routes"
	FileSegments  = "segments"
	FileVehicles  = "vehicles"
)

var (
	locationColumns = []string{"id", "name", "lat", "long", "is_hub"}
	relationColumns = []string{"id", "id_loc_1", "id_loc_2", "dist", "time"}
	routeColumns    = []string{"id", "start_datetime", "end_datetime", "distance_km"}
	segmentColumns  = []string{"id", "route_id", "seq", "start_loc_id", "end_loc_id", "start_datetime", "end_datetime", "relation_id"}
	vehicleColumns  = []string{"Id", "registration_number", "brand", "service_interval_km", "Leasing_start_km",
		"leasing_limit_km", "leasing_start_date", "leasing_end_date", "current_odometer_km", "Current_location_id"}
)

// RouteRow is one routes.csv record before its segments are attached.
type RouteRow struct {
	ID         int64
	StartTime  time.Time
	EndTime    time.Time
	DistanceKm float64
}

// parseAll drives one CSV stream through a row function. Row numbers in
// errors are 1-based over data rows; the header is row 0.
func parseAll[T any](file string, r io.Reader, columns []string, rowFn func(*fields) (T, error)) ([]T, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, shared.NewInputInvalidError(file, 0, "empty file")
	}
	if err != nil {
		return nil, shared.NewInputInvalidError(file, 0, err.Error())
	}
	idx := indexColumns(header)
	if missing := missingColumns(idx, columns); len(missing) > 0 {
		return nil, shared.NewInputInvalidError(file, 0, "missing columns: "+strings.Join(missing, ", "))
	}

	var out []T
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, shared.NewInputInvalidError(file, row, err.Error())
		}
		v, err := rowFn(&fields{rec: rec, cols: idx})
		if err != nil {
			return nil, shared.NewInputInvalidError(file, row, err.Error())
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseLocations reads locations.csv.
func ParseLocations(r io.Reader) ([]*network.Location, error) {
	return parseAll(FileLocations, r, locationColumns, parseLocationRow)
}

func parseLocationRow(f *fields) (*network.Location, error) {
	id := f.Int64("id")
	name := f.String("name")
	lat := f.Float("lat")
	lon := f.Float("long")
	isHub := f.Bool01("is_hub")
	if err := f.Err(); err != nil {
		return nil, err
	}
	return network.NewLocation(id, name, lat, lon, isHub)
}

// ParseEdges reads locations_relations.csv. Each record is one directed
// edge; reverse travel needs its own record.
func ParseEdges(r io.Reader) ([]*network.Edge, error) {
	return parseAll(FileRelations, r, relationColumns, parseEdgeRow)
}

func parseEdgeRow(f *fields) (*network.Edge, error) {
	id := f.Int64("id")
	from := f.Int64("id_loc_1")
	to := f.Int64("id_loc_2")
	dist := f.Float("dist")
	hours := f.Float("time")
	if err := f.Err(); err != nil {
		return nil, err
	}
	return network.NewEdge(id, from, to, dist, hours)
}

// ParseVehicles reads vehicles.csv. An unknown current location ("N/A" or
// empty) reads as zero; placement parks such vehicles by demand alone.
func ParseVehicles(r io.Reader) ([]*fleet.Vehicle, error) {
	return parseAll(FileVehicles, r, vehicleColumns, parseVehicleRow)
}

func parseVehicleRow(f *fields) (*fleet.Vehicle, error) {
	id := f.Int64("Id")
	registration := f.String("registration_number")
	brand := f.String("brand")
	serviceInterval := f.Int("service_interval_km")
	leasingStartKm := f.Int("Leasing_start_km")
	leasingLimitKm := f.Int("leasing_limit_km")
	leasingStart := f.Time("leasing_start_date")
	leasingEnd := f.Time("leasing_end_date")
	odometer := f.Int("current_odometer_km")
	location := f.OptionalID("Current_location_id")
	if err := f.Err(); err != nil {
		return nil, err
	}
	return fleet.NewVehicle(id, registration, brand, serviceInterval, leasingStartKm,
		leasingLimitKm, leasingStart, leasingEnd, odometer, location)
}

// ParseRouteRows reads routes.csv. Segments are attached separately by
// BuildRoutes, so this returns raw rows rather than domain routes.
func ParseRouteRows(r io.Reader) ([]RouteRow, error) {
	return parseAll(FileRoutes, r, routeColumns, parseRouteRow)
}

func parseRouteRow(f *fields) (RouteRow, error) {
	row := RouteRow{
		ID:         f.Int64("id"),
		StartTime:  f.Time("start_datetime"),
		EndTime:    f.Time("end_datetime"),
		DistanceKm: f.Float("distance_km"),
	}
	return row, f.Err()
}

// ParseSegments reads segments.csv grouped by route id. Per-route ordering
// by seq happens when the route is built.
func ParseSegments(r io.Reader) (map[int64][]schedule.Segment, error) {
	segments, err := parseAll(FileSegments, r, segmentColumns, parseSegmentRow)
	if err != nil {
		return nil, err
	}
	grouped := make(map[int64][]schedule.Segment)
	for _, s := range segments {
		grouped[s.RouteID] = append(grouped[s.RouteID], s)
	}
	return grouped, nil
}

func parseSegmentRow(f *fields) (schedule.Segment, error) {
	s := schedule.Segment{
		ID:         f.Int64("id"),
		RouteID:    f.Int64("route_id"),
		Seq:        f.Int("seq"),
		StartLocID: f.Int64("start_loc_id"),
		EndLocID:   f.Int64("end_loc_id"),
		StartTime:  f.Time("start_datetime"),
		EndTime:    f.Time("end_datetime"),
		RelationID: f.OptionalID("relation_id"),
	}
	return s, f.Err()
}
