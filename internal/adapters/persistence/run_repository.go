package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lspgroup/fleetopt-go/internal/application/assignment"
	"github.com/lspgroup/fleetopt-go/internal/application/optimizer"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/planning"
)

// GormRunRepository implements optimizer.RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GORM run repository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// SaveRun persists a finished run: the summary row plus every assignment,
// unassigned route and final vehicle state, in one transaction.
func (r *GormRunRepository) SaveRun(ctx context.Context, result *optimizer.RunResult) error {
	run, err := runToModel(result)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", result.RunID, err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}

		if len(result.Assignments) > 0 {
			models := make([]AssignmentModel, len(result.Assignments))
			for i, a := range result.Assignments {
				models[i] = assignmentToModel(result.RunID, a)
			}
			if err := tx.CreateInBatches(&models, 500).Error; err != nil {
				return fmt.Errorf("failed to save assignments: %w", err)
			}
		}

		if len(result.Unassigned) > 0 {
			models := make([]UnassignedModel, 0, len(result.Unassigned))
			for _, u := range result.Unassigned {
				m, err := unassignedToModel(result.RunID, u)
				if err != nil {
					return fmt.Errorf("failed to encode unassigned route %d: %w", u.RouteID, err)
				}
				models = append(models, m)
			}
			if err := tx.Create(&models).Error; err != nil {
				return fmt.Errorf("failed to save unassigned routes: %w", err)
			}
		}

		if len(result.FinalStates) > 0 {
			models := make([]VehicleStateModel, len(result.FinalStates))
			for i, s := range result.FinalStates {
				models[i] = snapshotToModel(result.RunID, s)
			}
			if err := tx.CreateInBatches(&models, 500).Error; err != nil {
				return fmt.Errorf("failed to save vehicle states: %w", err)
			}
		}
		return nil
	})
}

// GetSummary retrieves a stored run summary by id.
func (r *GormRunRepository) GetSummary(ctx context.Context, runID string) (*optimizer.RunSummary, error) {
	var model RunModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", runID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find run %s: %w", runID, result.Error)
	}
	return modelToSummary(&model)
}

// ListAssignments retrieves one page of a run's assignment log, ordered the
// way the engine produced it.
func (r *GormRunRepository) ListAssignments(ctx context.Context, runID string, offset, limit int) ([]*assignment.Assignment, error) {
	var models []AssignmentModel
	result := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("route_start, route_id").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list assignments for run %s: %w", runID, result.Error)
	}

	assignments := make([]*assignment.Assignment, len(models))
	for i, m := range models {
		assignments[i] = modelToAssignment(&m)
	}
	return assignments, nil
}

func runToModel(result *optimizer.RunResult) (*RunModel, error) {
	s := result.Summary
	reasons, err := json.Marshal(s.UnassignedByReason)
	if err != nil {
		return nil, err
	}
	options, err := json.Marshal(s.Options)
	if err != nil {
		return nil, err
	}
	cancelled := 0
	if s.Cancelled {
		cancelled = 1
	}
	return &RunModel{
		ID:                 s.RunID,
		StartedAt:          s.StartedAt,
		DurationSeconds:    s.DurationSeconds,
		Cancelled:          cancelled,
		FleetSize:          s.FleetSize,
		RoutesTotal:        s.RoutesTotal,
		RoutesAssigned:     s.RoutesAssigned,
		RoutesUnassigned:   s.RoutesUnassigned,
		TotalCostPLN:       s.TotalCostPLN,
		RelocationCount:    s.RelocationCount,
		RelocationCostPLN:  s.RelocationCostPLN,
		ServiceCount:       s.ServiceCount,
		ServiceCostPLN:     s.ServiceCostPLN,
		OverageKm:          s.OverageKm,
		OverageCostPLN:     s.OverageCostPLN,
		UnassignedByReason: string(reasons),
		Options:            string(options),
	}, nil
}

func modelToSummary(m *RunModel) (*optimizer.RunSummary, error) {
	s := &optimizer.RunSummary{
		RunID:              m.ID,
		StartedAt:          m.StartedAt,
		DurationSeconds:    m.DurationSeconds,
		Cancelled:          m.Cancelled != 0,
		FleetSize:          m.FleetSize,
		RoutesTotal:        m.RoutesTotal,
		RoutesAssigned:     m.RoutesAssigned,
		RoutesUnassigned:   m.RoutesUnassigned,
		UnassignedByReason: make(map[string]int),
		TotalCostPLN:       m.TotalCostPLN,
		RelocationCount:    m.RelocationCount,
		RelocationCostPLN:  m.RelocationCostPLN,
		ServiceCount:       m.ServiceCount,
		ServiceCostPLN:     m.ServiceCostPLN,
		OverageKm:          m.OverageKm,
		OverageCostPLN:     m.OverageCostPLN,
	}
	if m.UnassignedByReason != "" {
		if err := json.Unmarshal([]byte(m.UnassignedByReason), &s.UnassignedByReason); err != nil {
			return nil, fmt.Errorf("failed to decode unassigned reasons: %w", err)
		}
	}
	if m.Options != "" {
		if err := json.Unmarshal([]byte(m.Options), &s.Options); err != nil {
			return nil, fmt.Errorf("failed to decode run options: %w", err)
		}
	}
	return s, nil
}

func assignmentToModel(runID string, a *assignment.Assignment) AssignmentModel {
	m := AssignmentModel{
		RunID:             runID,
		RouteID:           a.RouteID,
		VehicleID:         a.VehicleID,
		Date:              a.Date,
		RouteKm:           a.RouteKm,
		RouteStart:        a.RouteStart,
		RouteEnd:          a.RouteEnd,
		RouteStartLocID:   a.RouteStartLocID,
		RouteEndLocID:     a.RouteEndLocID,
		RelocationFromID:  a.RelocationFromID,
		RelocationToID:    a.RelocationToID,
		RelocationKm:      a.RelocationKm,
		RelocationHours:   a.RelocationHours,
		RelocationCostPLN: a.RelocationCostPLN,
		ServiceCostPLN:    a.ServiceCostPLN,
		OverageKm:         a.OverageKm,
		OverageCostPLN:    a.OverageCostPLN,
		ServicePenaltyPLN: a.ServicePenaltyPLN,
		CostPLN:           a.CostPLN,
		ChainScore:        a.ChainScore,
		OdometerBeforeKm:  a.OdometerBeforeKm,
		OdometerAfterKm:   a.OdometerAfterKm,
		LeaseYearKmBefore: a.LeaseYearKmBefore,
		LeaseYearKmAfter:  a.LeaseYearKmAfter,
	}
	if a.RequiresRelocation {
		m.RequiresRelocation = 1
	}
	if a.RequiresService {
		m.RequiresService = 1
		start, end := a.ServiceStart, a.ServiceEnd
		m.ServiceStart = &start
		m.ServiceEnd = &end
	}
	return m
}

func modelToAssignment(m *AssignmentModel) *assignment.Assignment {
	a := &assignment.Assignment{
		RouteID:            m.RouteID,
		VehicleID:          m.VehicleID,
		Date:               m.Date,
		RouteKm:            m.RouteKm,
		RouteStart:         m.RouteStart,
		RouteEnd:           m.RouteEnd,
		RouteStartLocID:    m.RouteStartLocID,
		RouteEndLocID:      m.RouteEndLocID,
		RequiresRelocation: m.RequiresRelocation != 0,
		RelocationFromID:   m.RelocationFromID,
		RelocationToID:     m.RelocationToID,
		RelocationKm:       m.RelocationKm,
		RelocationHours:    m.RelocationHours,
		RelocationCostPLN:  m.RelocationCostPLN,
		RequiresService:    m.RequiresService != 0,
		ServiceCostPLN:     m.ServiceCostPLN,
		OverageKm:          m.OverageKm,
		OverageCostPLN:     m.OverageCostPLN,
		ServicePenaltyPLN:  m.ServicePenaltyPLN,
		CostPLN:            m.CostPLN,
		ChainScore:         m.ChainScore,
		OdometerBeforeKm:   m.OdometerBeforeKm,
		OdometerAfterKm:    m.OdometerAfterKm,
		LeaseYearKmBefore:  m.LeaseYearKmBefore,
		LeaseYearKmAfter:   m.LeaseYearKmAfter,
	}
	if m.ServiceStart != nil {
		a.ServiceStart = *m.ServiceStart
	}
	if m.ServiceEnd != nil {
		a.ServiceEnd = *m.ServiceEnd
	}
	return a
}

func unassignedToModel(runID string, u *assignment.Unassigned) (UnassignedModel, error) {
	reasons := make(map[string]int, len(u.Reasons))
	for reason, count := range u.Reasons {
		reasons[string(reason)] = count
	}
	encoded, err := json.Marshal(reasons)
	if err != nil {
		return UnassignedModel{}, err
	}
	return UnassignedModel{
		RunID:          runID,
		RouteID:        u.RouteID,
		StartTime:      u.StartTime,
		StartLocID:     u.StartLocID,
		DominantReason: string(u.DominantReason),
		Reasons:        string(encoded),
	}, nil
}

// ModelToUnassigned rebuilds the domain record from a stored row, the
// inverse of what SaveRun writes.
func ModelToUnassigned(m *UnassignedModel) (*assignment.Unassigned, error) {
	raw := make(map[string]int)
	if m.Reasons != "" {
		if err := json.Unmarshal([]byte(m.Reasons), &raw); err != nil {
			return nil, fmt.Errorf("failed to decode reasons for route %d: %w", m.RouteID, err)
		}
	}
	reasons := make(map[planning.Reason]int, len(raw))
	for reason, count := range raw {
		reasons[planning.Reason(reason)] = count
	}
	return &assignment.Unassigned{
		RouteID:        m.RouteID,
		StartTime:      m.StartTime,
		StartLocID:     m.StartLocID,
		Reasons:        reasons,
		DominantReason: planning.Reason(m.DominantReason),
	}, nil
}

func snapshotToModel(runID string, s fleet.Snapshot) VehicleStateModel {
	return VehicleStateModel{
		RunID:            runID,
		VehicleID:        s.VehicleID,
		LocationID:       s.LocationID,
		OdometerKm:       s.OdometerKm,
		KmSinceService:   s.KmSinceService,
		KmThisLeaseYear:  s.KmThisLeaseYear,
		TotalLifetimeKm:  s.TotalLifetimeKm,
		AvailableFrom:    s.AvailableFrom,
		LeaseCycle:       s.LeaseCycle,
		TotalRelocations: s.TotalRelocations,
		RelocationCost:   s.RelocationCost,
		OverageCost:      s.OverageCost,
		ServiceCount:     s.ServiceCount,
		ServiceCost:      s.ServiceCost,
		RoutesCompleted:  s.RoutesCompleted,
	}
}
