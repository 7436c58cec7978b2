// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reclaim/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrInvalidTransition),
		errors.Is(err, types.ErrEvidenceRequired),
		errors.Is(err, types.ErrEvidenceAlreadyExists),
		errors.Is(err, types.ErrGateNotSatisfied),
		errors.Is(err, types.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, types.ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeLifecycleError maps domain errors to a status. Unknown errors are
// logged by the middleware and hidden from the caller.
func writeLifecycleError(c *gin.Context, err error) {
	status := errorStatus(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		writeError(c, status, "internal error")
		return
	}
	writeError(c, status, err.Error())
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (types.ID, bool) {
	id := c.Param(name)
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing "+name)
		return "", false
	}
	return types.ID(id), true
}
