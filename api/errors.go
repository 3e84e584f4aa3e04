package api

import (
	"net/http"

	"github.com/bookabite/reservations/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error          string `json:"error"`
	Code           string `json:"code"`
	AvailableSeats *int   `json:"availableSeats,omitempty"`
}

var statusByKind = map[domain.ErrorKind]int{
	domain.KindValidation:           http.StatusBadRequest,
	domain.KindInsufficientCapacity: http.StatusBadRequest,
	domain.KindNotFound:             http.StatusNotFound,
	domain.KindSlotNotFound:         http.StatusNotFound,
	domain.KindForbidden:            http.StatusForbidden,
	domain.KindConflict:             http.StatusConflict,
	domain.KindDuplicate:            http.StatusConflict,
	domain.KindCodeGeneration:       http.StatusInternalServerError,
	domain.KindInternal:             http.StatusInternalServerError,
}

// writeError maps a service error onto its status code. Only the safe message
// reaches the client; causes were already logged by the service.
func writeError(c *gin.Context, err error) {
	svcErr := domain.AsError(err)
	status, ok := statusByKind[svcErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	resp := errorResponse{Error: svcErr.Message, Code: string(svcErr.Kind)}
	if svcErr.Kind == domain.KindInsufficientCapacity {
		seats := svcErr.AvailableSeats
		resp.AvailableSeats = &seats
	}
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: message, Code: string(domain.KindValidation)})
}
