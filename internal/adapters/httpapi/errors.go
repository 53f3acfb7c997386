package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/domain/shared"
	"github.com/lspgroup/fleetopt-go/internal/infrastructure/config"
)

// writeError maps domain error kinds to HTTP statuses. Unknown errors
// stay 500 so a bug never masquerades as a client mistake.
func writeError(c *gin.Context, err error) {
	var (
		validationErr *shared.ValidationError
		inputErr      *shared.InputInvalidError
	)

	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, config.ErrUnknownConfigKey), errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &inputErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
