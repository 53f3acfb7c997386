package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lspgroup/fleetopt-go/internal/adapters/csvload"
	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/application/ingest"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
)

// uploadValidate schema-checks a single CSV file without storing anything.
// Multipart form: "file" carries the CSV, "type" names its kind.
func (s *Server) uploadValidate(c *gin.Context) {
	kind := c.PostForm("type")
	if kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing form field: type"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing form field: file"})
		return
	}

	file, err := header.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer file.Close()

	result, err := csvload.ValidateFile(kind, file)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"type":     result.Kind,
		"filename": header.Filename,
		"rows":     result.Rows,
		"valid":    result.OK(),
		"problems": result.Problems,
	})
}

// uploadImport parses the five CSV files from one multipart request and
// stores them as a new dataset. Form field names match the file kinds.
// Nothing is stored when any file fails to parse.
func (s *Server) uploadImport(c *gin.Context) {
	locations, err := parseUpload(c, csvload.FileLocations, csvload.ParseLocations)
	if err != nil {
		writeError(c, err)
		return
	}
	edges, err := parseUpload(c, csvload.FileRelations, csvload.ParseEdges)
	if err != nil {
		writeError(c, err)
		return
	}
	vehicles, err := parseUpload(c, csvload.FileVehicles, csvload.ParseVehicles)
	if err != nil {
		writeError(c, err)
		return
	}
	routeRows, err := parseUpload(c, csvload.FileRoutes, csvload.ParseRouteRows)
	if err != nil {
		writeError(c, err)
		return
	}
	segments, err := parseUpload(c, csvload.FileSegments, csvload.ParseSegments)
	if err != nil {
		writeError(c, err)
		return
	}

	routes, err := csvload.BuildRoutes(routeRows, segments, s.logger)
	if err != nil {
		writeError(c, err)
		return
	}

	dataset := &common.Dataset{
		Locations: locations,
		Edges:     edges,
		Vehicles:  vehicles,
		Routes:    routes,
	}

	response, err := s.mediator.Send(c.Request.Context(), &ingest.ImportDatasetCommand{Dataset: dataset})
	if err != nil {
		writeError(c, err)
		return
	}
	imported := response.(*ingest.ImportDatasetResponse)

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"dataset_id": imported.DatasetID,
		"imported":   imported.Counts,
	})
}

// parseUpload opens the named multipart file and runs one csvload parser
// over it. A missing file is the caller's mistake, not a parse failure.
func parseUpload[T any](c *gin.Context, name string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T

	header, err := c.FormFile(name)
	if err != nil {
		return zero, shared.NewValidationError(name, "missing file")
	}

	file, err := header.Open()
	if err != nil {
		return zero, err
	}
	defer file.Close()

	return parse(file)
}
