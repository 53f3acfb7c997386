package persistence

import (
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/network"
	"github.com/lspgroup/fleetopt-go/internal/domain/schedule"
)

func locationToModel(datasetID int64, loc *network.Location) LocationModel {
	isHub := 0
	if loc.IsHub {
		isHub = 1
	}
	return LocationModel{
		ID:        loc.ID,
		DatasetID: datasetID,
		Name:      loc.Name,
		Lat:       loc.Lat,
		Long:      loc.Lon,
		IsHub:     isHub,
	}
}

func modelToLocation(m *LocationModel) (*network.Location, error) {
	return network.NewLocation(m.ID, m.Name, m.Lat, m.Long, m.IsHub != 0)
}

func edgeToModel(datasetID int64, e *network.Edge) EdgeModel {
	return EdgeModel{
		ID:        e.ID,
		DatasetID: datasetID,
		FromID:    e.FromID,
		ToID:      e.ToID,
		DistKm:    e.DistanceKm,
		TimeHours: e.TravelHours,
	}
}

func modelToEdge(m *EdgeModel) (*network.Edge, error) {
	return network.NewEdge(m.ID, m.FromID, m.ToID, m.DistKm, m.TimeHours)
}

func vehicleToModel(datasetID int64, v *fleet.Vehicle) VehicleModel {
	m := VehicleModel{
		ID:                v.ID,
		DatasetID:         datasetID,
		Registration:      v.RegistrationNumber,
		Brand:             v.Brand,
		ServiceIntervalKm: v.ServiceIntervalKm,
		LeasingStartKm:    v.LeasingStartKm,
		LeasingLimitKm:    v.LeasingLimitKm,
		LeasingStartDate:  v.LeasingStartDate,
		LeasingEndDate:    v.LeasingEndDate,
		CurrentOdometerKm: v.CurrentOdometerKm,
	}
	if v.HasKnownLocation() {
		loc := v.CurrentLocationID
		m.CurrentLocationID = &loc
	}
	return m
}

func modelToVehicle(m *VehicleModel) (*fleet.Vehicle, error) {
	var location int64
	if m.CurrentLocationID != nil {
		location = *m.CurrentLocationID
	}
	return fleet.NewVehicle(m.ID, m.Registration, m.Brand, m.ServiceIntervalKm,
		m.LeasingStartKm, m.LeasingLimitKm, m.LeasingStartDate, m.LeasingEndDate,
		m.CurrentOdometerKm, location)
}

func routeToModel(datasetID int64, r *schedule.Route) RouteModel {
	return RouteModel{
		ID:         r.ID,
		DatasetID:  datasetID,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		DistanceKm: r.DistanceKm,
	}
}

func segmentToModel(datasetID int64, s schedule.Segment) SegmentModel {
	return SegmentModel{
		ID:         s.ID,
		DatasetID:  datasetID,
		RouteID:    s.RouteID,
		Seq:        s.Seq,
		StartLocID: s.StartLocID,
		EndLocID:   s.EndLocID,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		RelationID: s.RelationID,
	}
}

func modelToSegment(m *SegmentModel) schedule.Segment {
	return schedule.Segment{
		ID:         m.ID,
		RouteID:    m.RouteID,
		Seq:        m.Seq,
		StartLocID: m.StartLocID,
		EndLocID:   m.EndLocID,
		StartTime:  m.StartTime,
		EndTime:    m.EndTime,
		RelationID: m.RelationID,
	}
}
