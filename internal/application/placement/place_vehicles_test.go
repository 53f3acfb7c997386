package placement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/application/placement"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
)

func placementDataset(t *testing.T) *common.Dataset {
	t.Helper()
	return &common.Dataset{
		Locations: []*network.Location{
			{ID: 1, Name: "Warsaw", Lat: 52.23, Lon: 21.01},
			{ID: 2, Name: "Krakow", Lat: 50.06, Lon: 19.94, IsHub: true},
			{ID: 3, Name: "Gdansk", Lat: 54.35, Lon: 18.65},
		},
		Vehicles: testFleet(t, 10),
		Routes:   demandRoutes(t, map[int64]int{1: 50, 2: 30, 3: 20}),
	}
}

func TestPlaceVehiclesHandler_PlacesWholeFleet(t *testing.T) {
	// Arrange
	handler := placement.NewPlaceVehiclesHandler()
	cmd := &placement.PlaceVehiclesCommand{
		Dataset: placementDataset(t),
		Params:  placement.Params{Strategy: placement.StrategyProportional, MaxConcentration: 0.3},
	}

	// Act
	response, err := handler.Handle(context.Background(), cmd)

	// Assert
	require.NoError(t, err)
	resp, ok := response.(*placement.PlaceVehiclesResponse)
	require.True(t, ok)
	assert.Len(t, resp.Placement, 10)
	assert.Equal(t, map[int64]int{1: 4, 2: 3, 3: 3}, resp.CountsByLocation)
	assert.Equal(t, map[int64]int{1: 50, 2: 30, 3: 20}, resp.Demand)
}

func TestPlaceVehiclesHandler_ThroughMediator(t *testing.T) {
	// Arrange
	mediator := common.NewMediator()
	err := common.RegisterHandler[*placement.PlaceVehiclesCommand](mediator, placement.NewPlaceVehiclesHandler())
	require.NoError(t, err)
	cmd := &placement.PlaceVehiclesCommand{Dataset: placementDataset(t)}

	// Act
	response, err := mediator.Send(context.Background(), cmd)

	// Assert
	require.NoError(t, err)
	resp, ok := response.(*placement.PlaceVehiclesResponse)
	require.True(t, ok)
	assert.Len(t, resp.Placement, 10)
}

func TestPlaceVehiclesHandler_RejectsWrongRequestType(t *testing.T) {
	// Arrange
	handler := placement.NewPlaceVehiclesHandler()

	// Act
	_, err := handler.Handle(context.Background(), placementRequestStub{})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request type")
}

func TestPlaceVehiclesHandler_RequiresDataset(t *testing.T) {
	// Arrange
	handler := placement.NewPlaceVehiclesHandler()

	// Act
	_, err := handler.Handle(context.Background(), &placement.PlaceVehiclesCommand{})

	// Assert
	require.Error(t, err)
}

type placementRequestStub struct{}
