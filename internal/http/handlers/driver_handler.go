// README: Driver registry handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reclaim/internal/modules/fleet"
)

type DriverHandler struct {
	fleet *fleet.Service
}

func NewDriverHandler(svc *fleet.Service) *DriverHandler {
	return &DriverHandler{fleet: svc}
}

func (h *DriverHandler) Register(c *gin.Context) {
	var req fleet.RegisterCommand
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.fleet.Register(c.Request.Context(), req)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, d)
}

func (h *DriverHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.fleet.Get(c.Request.Context(), id)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

// List returns active drivers unless ?all=true.
func (h *DriverHandler) List(c *gin.Context) {
	list, err := h.fleet.List(c.Request.Context(), c.Query("all") != "true")
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"drivers": list})
}
