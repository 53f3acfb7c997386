package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultAssignmentsPageSize = 100

// getRun returns the stored summary of one optimization run.
func (s *Server) getRun(c *gin.Context) {
	summary, err := s.runs.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// listRunAssignments pages through the stored assignment log of one run.
func (s *Server) listRunAssignments(c *gin.Context) {
	runID := c.Param("id")

	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := queryInt(c, "limit", defaultAssignmentsPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The summary lookup distinguishes an unknown run from an empty page.
	if _, err := s.runs.GetSummary(c.Request.Context(), runID); err != nil {
		writeError(c, err)
		return
	}

	assignments, err := s.runs.ListAssignments(c.Request.Context(), runID, offset, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":      runID,
		"offset":      offset,
		"limit":       limit,
		"count":       len(assignments),
		"assignments": assignments,
	})
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, &queryParamError{name: name}
	}
	return value, nil
}

type queryParamError struct {
	name string
}

func (e *queryParamError) Error() string {
	return "query parameter " + e.name + " must be a non-negative integer"
}
