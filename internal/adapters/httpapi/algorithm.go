package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lspgroup/fleetopt-go/internal/application/assignment"
	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/application/optimizer"
	"github.com/lspgroup/fleetopt-go/internal/application/placement"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
	"github.com/lspgroup/fleetopt-go/internal/infrastructure/config"
)

// configFromBody copies the server config and applies the request body as
// JSON overrides. An empty body runs with the configured options as-is.
func (s *Server) configFromBody(c *gin.Context) (*config.Config, error) {
	cfg := *s.cfg

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	if len(body) > 0 {
		if err := config.ApplyJSON(&cfg, body); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// loadDataset fetches the dataset named by ?dataset_id=, or the latest
// import when the query parameter is absent.
func (s *Server) loadDataset(c *gin.Context) (*common.Dataset, error) {
	raw := c.Query("dataset_id")
	if raw == "" {
		return s.datasets.LoadLatest(c.Request.Context())
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, shared.NewValidationError("dataset_id", "must be an integer")
	}
	return s.datasets.Load(c.Request.Context(), id)
}

// runPlacement runs phase 1 only and returns the placement map.
func (s *Server) runPlacement(c *gin.Context) {
	cfg, err := s.configFromBody(c)
	if err != nil {
		writeError(c, err)
		return
	}
	dataset, err := s.loadDataset(c)
	if err != nil {
		writeError(c, err)
		return
	}

	started := time.Now()
	response, err := s.mediator.Send(c.Request.Context(), &placement.PlaceVehiclesCommand{
		Dataset: dataset,
		Params:  cfg.PlacementParams(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	placed := response.(*placement.PlaceVehiclesResponse)

	c.JSON(http.StatusOK, gin.H{
		"status":             "completed",
		"runtime_seconds":    time.Since(started).Seconds(),
		"vehicles_placed":    len(placed.Placement),
		"placement":          placed.Placement,
		"counts_by_location": placed.CountsByLocation,
		"demand":             placed.Demand,
	})
}

// runAssignment runs phase 2 over the stored dataset. Vehicles start from
// their stored locations; run placement first (or the full run) to start
// from an optimized distribution.
func (s *Server) runAssignment(c *gin.Context) {
	cfg, err := s.configFromBody(c)
	if err != nil {
		writeError(c, err)
		return
	}
	dataset, err := s.loadDataset(c)
	if err != nil {
		writeError(c, err)
		return
	}

	started := time.Now()
	response, err := s.mediator.Send(c.Request.Context(), &assignment.AssignRoutesCommand{
		Dataset:   dataset,
		Placement: nil,
		Params:    cfg.AssignmentParams(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	result := response.(*assignment.AssignRoutesResponse).Result

	totalCost := 0.0
	for _, a := range result.Assignments {
		totalCost += a.CostPLN
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "completed",
		"runtime_seconds":   time.Since(started).Seconds(),
		"routes_total":      result.RoutesTotal,
		"routes_assigned":   len(result.Assignments),
		"routes_unassigned": len(result.Unassigned),
		"total_cost_pln":    totalCost,
		"cancelled":         result.Cancelled,
	})
}

// runFull runs placement + assignment and persists the run.
func (s *Server) runFull(c *gin.Context) {
	cfg, err := s.configFromBody(c)
	if err != nil {
		writeError(c, err)
		return
	}
	dataset, err := s.loadDataset(c)
	if err != nil {
		writeError(c, err)
		return
	}

	response, err := s.mediator.Send(c.Request.Context(), &optimizer.RunOptimizationCommand{
		Dataset: dataset,
		Options: cfg.OptimizerOptions(),
		Persist: true,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	result := response.(*optimizer.RunOptimizationResponse).Result

	c.JSON(http.StatusOK, gin.H{
		"status":          "completed",
		"run_id":          result.RunID,
		"runtime_seconds": result.Summary.DurationSeconds,
		"summary":         result.Summary,
	})
}
