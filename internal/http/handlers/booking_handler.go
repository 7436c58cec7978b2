// README: Booking handlers: create, query, assign, status changes and approval.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"reclaim/internal/http/middleware"
	"reclaim/internal/modules/booking"
	"reclaim/internal/modules/lifecycle"
	"reclaim/internal/types"
)

type BookingHandler struct {
	lifecycle *lifecycle.Service
}

func NewBookingHandler(svc *lifecycle.Service) *BookingHandler {
	return &BookingHandler{lifecycle: svc}
}

type createBookingReq struct {
	Site           booking.Site               `json:"site"`
	Assets         []lifecycle.AssetLineInput `json:"assets"`
	ScheduledDate  time.Time                  `json:"scheduledDate"`
	CharityPercent int                        `json:"charityPercent"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.lifecycle.CreateBooking(c.Request.Context(), lifecycle.CreateBookingCommand{
		Site:           req.Site,
		Assets:         req.Assets,
		ScheduledDate:  req.ScheduledDate,
		CharityPercent: req.CharityPercent,
		Actor:          middleware.CallerActor(c),
	})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, b)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.lifecycle.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *BookingHandler) List(c *gin.Context) {
	var filter booking.ListFilter
	if s := c.Query("status"); s != "" {
		st := booking.Status(s)
		filter.Status = &st
	}
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	list, err := h.lifecycle.ListBookings(c.Request.Context(), filter)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": list})
}

type assignDriverReq struct {
	DriverID string `json:"driverId"`
}

func (h *BookingHandler) Assign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req assignDriverReq
	if !bindJSON(c, &req) {
		return
	}
	if req.DriverID == "" {
		writeError(c, http.StatusBadRequest, "missing driverId")
		return
	}
	b, err := h.lifecycle.AssignDriver(c.Request.Context(), lifecycle.AssignDriverCommand{
		BookingID: id,
		DriverID:  types.ID(req.DriverID),
		Actor:     middleware.CallerActor(c),
	})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

type bookingStatusReq struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *BookingHandler) Transition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req bookingStatusReq
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.lifecycle.TransitionBookingStatus(c.Request.Context(), lifecycle.TransitionBookingCommand{
		BookingID: id,
		Status:    booking.Status(req.Status),
		Notes:     req.Notes,
		Actor:     middleware.CallerActor(c),
	})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *BookingHandler) Approve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.lifecycle.ApproveBooking(c.Request.Context(), lifecycle.ApproveBookingCommand{
		BookingID: id,
		Actor:     middleware.CallerActor(c),
	})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *BookingHandler) Completion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	st, err := h.lifecycle.GetCompletionStatus(c.Request.Context(), id)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

func (h *BookingHandler) Impact(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	impact, err := h.lifecycle.GetImpact(c.Request.Context(), id)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, impact)
}

func (h *BookingHandler) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	events, err := h.lifecycle.History(c.Request.Context(), id)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"events": events})
}
