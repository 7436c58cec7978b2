// README: Job handlers for drivers: status updates and evidence capture.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reclaim/internal/http/middleware"
	"reclaim/internal/modules/job"
	"reclaim/internal/modules/lifecycle"
)

type JobHandler struct {
	lifecycle *lifecycle.Service
}

func NewJobHandler(svc *lifecycle.Service) *JobHandler {
	return &JobHandler{lifecycle: svc}
}

type evidenceReq struct {
	Status      string   `json:"status"`
	Photos      []string `json:"photos"`
	Signature   string   `json:"signature"`
	SealNumbers []string `json:"sealNumbers"`
	Notes       string   `json:"notes"`
}

func (r evidenceReq) evidence() job.Evidence {
	return job.Evidence{
		Status:      job.Status(r.Status),
		Photos:      r.Photos,
		Signature:   r.Signature,
		SealNumbers: r.SealNumbers,
		Notes:       r.Notes,
	}
}

type jobStatusReq struct {
	Status string `json:"status"`
}

func (h *JobHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	j, err := h.lifecycle.GetJob(c.Request.Context(), id)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, j)
}

func (h *JobHandler) Transition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req jobStatusReq
	if !bindJSON(c, &req) {
		return
	}
	j, err := h.lifecycle.TransitionJobStatus(c.Request.Context(), lifecycle.TransitionJobCommand{
		JobID:  id,
		Status: job.Status(req.Status),
		Actor:  middleware.CallerActor(c),
	})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, j)
}

func (h *JobHandler) SubmitEvidence(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req evidenceReq
	if !bindJSON(c, &req) {
		return
	}
	j, err := h.lifecycle.SubmitJobEvidence(c.Request.Context(), lifecycle.SubmitEvidenceCommand{
		JobID:    id,
		Evidence: req.evidence(),
		Actor:    middleware.CallerActor(c),
	})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, j)
}

// Advance stores evidence for the target status and moves the job there.
func (h *JobHandler) Advance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req evidenceReq
	if !bindJSON(c, &req) {
		return
	}
	j, err := h.lifecycle.SubmitEvidenceAndTransition(c.Request.Context(), lifecycle.AdvanceJobCommand{
		JobID:    id,
		Status:   job.Status(req.Status),
		Evidence: req.evidence(),
		Actor:    middleware.CallerActor(c),
	})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, j)
}
