package csvload_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspgroup/fleetopt-go/internal/adapters/csvload"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

const (
	locationsCSV = `id,name,lat,long,is_hub
1,Warszawa,52.2297,21.0122,1
2,Krakow,50.0647,19.9450,0
`
	relationsCSV = `id,id_loc_1,id_loc_2,dist,time
1,1,2,295.0,3.5
2,2,1,295.0,3.5
`
	vehiclesCSV = `Id,registration_number,brand,service_interval_km,Leasing_start_km,leasing_limit_km,leasing_start_date,leasing_end_date,current_odometer_km,Current_location_id
1,WGM 10001,DAF,110000,0,150000,2024-01-01,2024-12-31,20000,1.0
2,WGM 10002,Volvo,110000,0,150000,2024-01-01,2024-12-31,15000,N/A
`
	routesCSV = `id,start_datetime,end_datetime,distance_km
1,2024-01-06 08:00:00,2024-01-06 16:00:00,420.5
2,2024-01-05T08:00:00,2024-01-05 12:00:00,180
3,2024-01-07 08:00:00,2024-01-07 12:00:00,100
`
	segmentsCSV = `id,route_id,seq,start_loc_id,end_loc_id,start_datetime,end_datetime,relation_id
2,1,2,2,1,2024-01-06 12:00:00,2024-01-06 16:00:00,2
1,1,1,1,2,2024-01-06 08:00:00,2024-01-06 12:00:00,1
3,2,1,1,1,2024-01-05 08:00:00,2024-01-05 12:00:00,N/A
`
)

func writeDataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func defaultDataDir(t *testing.T) string {
	t.Helper()
	return writeDataDir(t, map[string]string{
		"locations.csv":           locationsCSV,
		"locations_relations.csv": relationsCSV,
		"vehicles.csv":            vehiclesCSV,
		"routes.csv":              routesCSV,
		"segments.csv":            segmentsCSV,
	})
}

func TestLoader_LoadsWholeDirectory(t *testing.T) {
	// Arrange
	loader := csvload.NewLoader(nil)

	// Act
	ds, err := loader.LoadDataset(defaultDataDir(t))

	// Assert
	require.NoError(t, err)
	require.Len(t, ds.Locations, 2)
	assert.True(t, ds.Locations[0].IsHub)
	assert.Equal(t, "Warszawa", ds.Locations[0].Name)

	require.Len(t, ds.Edges, 2)
	assert.InDelta(t, 295.0, ds.Edges[0].DistanceKm, 1e-9)
	assert.InDelta(t, 3.5, ds.Edges[0].TravelHours, 1e-9)

	require.Len(t, ds.Vehicles, 2)
	assert.Equal(t, int64(1), ds.Vehicles[0].CurrentLocationID, "float-form id truncates")
	assert.False(t, ds.Vehicles[1].HasKnownLocation(), "N/A reads as unknown")
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ds.Vehicles[0].LeasingStartDate)
}

func TestLoader_AttachesAndOrdersSegments(t *testing.T) {
	// Arrange
	loader := csvload.NewLoader(nil)

	// Act
	ds, err := loader.LoadDataset(defaultDataDir(t))

	// Assert: route 3 has no segments and is dropped; the rest come back
	// chronologically with segments ordered by seq.
	require.NoError(t, err)
	require.Len(t, ds.Routes, 2)
	assert.Equal(t, int64(2), ds.Routes[0].ID)
	assert.Equal(t, int64(1), ds.Routes[1].ID)

	roundTrip := ds.Routes[1]
	require.Len(t, roundTrip.Segments, 2)
	assert.Equal(t, 1, roundTrip.Segments[0].Seq)
	assert.Equal(t, int64(1), roundTrip.StartLocationID())
	assert.Equal(t, int64(1), roundTrip.EndLocationID())
	assert.True(t, roundTrip.IsLoop())

	assert.Zero(t, ds.Routes[0].Segments[0].RelationID, "N/A relation reads as zero")
}

func TestLoader_MissingFileReportsWhich(t *testing.T) {
	// Arrange
	dir := defaultDataDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "segments.csv")))
	loader := csvload.NewLoader(nil)

	// Act
	_, err := loader.LoadDataset(dir)

	// Assert
	var invalid *shared.InputInvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "segments", invalid.File)
}

func TestParseVehicles_BadFieldNamesRowAndColumn(t *testing.T) {
	// Arrange
	broken := strings.Replace(vehiclesCSV, "Volvo,110000", "Volvo,a lot", 1)

	// Act
	_, err := csvload.ParseVehicles(strings.NewReader(broken))

	// Assert
	var invalid *shared.InputInvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "vehicles", invalid.File)
	assert.Equal(t, 2, invalid.Row)
	assert.Contains(t, err.Error(), "service_interval_km")
}

func TestParseLocations_MissingColumnFailsBeforeRows(t *testing.T) {
	// Arrange
	headerless := `id,name,lat,long
1,Warszawa,52.2297,21.0122
`

	// Act
	_, err := csvload.ParseLocations(strings.NewReader(headerless))

	// Assert
	var invalid *shared.InputInvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0, invalid.Row)
	assert.Contains(t, err.Error(), "missing columns: is_hub")
}

func TestParseRouteRows_AcceptsAllDatetimeLayouts(t *testing.T) {
	// Arrange
	mixed := `id,start_datetime,end_datetime,distance_km
1,2024-01-05 08:00:00,2024-01-05T12:00:00,180
2,2024-01-06,2024-01-06 12:00:00.500000,90
`

	// Act
	rows, err := csvload.ParseRouteRows(strings.NewReader(mixed))

	// Assert
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC), rows[0].StartTime)
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), rows[1].StartTime)
	assert.Equal(t, 500*time.Millisecond, rows[1].EndTime.Sub(time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)))
}

func TestValidateFile_CollectsProblemsWithoutStopping(t *testing.T) {
	// Arrange
	messy := `id,name,lat,long,is_hub
1,Warszawa,52.2297,21.0122,1
2,Krakow,not-a-number,19.9450,0
3,Gdansk,54.3520,18.6466,1
4,Poznan,52.4064,far west,0
`

	// Act
	result, err := csvload.ValidateFile("locations", strings.NewReader(messy))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, result.Rows)
	assert.False(t, result.OK())
	require.Len(t, result.Problems, 2)
	assert.Contains(t, result.Problems[0], "row 2")
	assert.Contains(t, result.Problems[1], "row 4")
}

func TestValidateFile_CleanFilePasses(t *testing.T) {
	// Act
	result, err := csvload.ValidateFile("vehicles", strings.NewReader(vehiclesCSV))

	// Assert
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, 2, result.Rows)
}

func TestValidateFile_UnknownKindIsAnError(t *testing.T) {
	// Act
	_, err := csvload.ValidateFile("drivers", strings.NewReader("id\n1\n"))

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown file type")
}
