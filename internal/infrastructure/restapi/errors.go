package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swap_gateway/internal/domain/entity"
)

// APIError is the error payload every endpoint renders on failure. Tag is
// the stable taxonomy identifier clients switch on; Message is display copy.
type APIError struct {
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// tagStatus maps taxonomy tags onto HTTP status codes. Unknown tags fall
// back to 502, matching the "network" catch-all.
var tagStatus = map[string]int{
	"wallet_not_found":            http.StatusServiceUnavailable,
	"connection_rejected":         http.StatusForbidden,
	"user_rejected":               http.StatusForbidden,
	"signing_failed":              http.StatusBadGateway,
	"validation":                  http.StatusBadRequest,
	"simulation_failed":           http.StatusUnprocessableEntity,
	"contract_transaction_failed": http.StatusBadGateway,
	"network":                     http.StatusBadGateway,
}

// writeError renders an error through the stable taxonomy.
func writeError(c *gin.Context, err error) {
	tag := entity.ErrorTag(err)
	status, ok := tagStatus[tag]
	if !ok {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": APIError{Tag: tag, Message: err.Error()}})
}
