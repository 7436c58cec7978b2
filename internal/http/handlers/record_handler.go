// README: Warehouse handlers: grading, sanitisation and verification records.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reclaim/internal/http/middleware"
	"reclaim/internal/modules/catalog"
	"reclaim/internal/modules/lifecycle"
	"reclaim/internal/modules/records"
)

type RecordHandler struct {
	lifecycle *lifecycle.Service
}

func NewRecordHandler(svc *lifecycle.Service) *RecordHandler {
	return &RecordHandler{lifecycle: svc}
}

func (h *RecordHandler) List(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	set, err := h.lifecycle.ListRecords(c.Request.Context(), id)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, set)
}

type gradeReq struct {
	Grade     string `json:"grade"`
	Condition string `json:"condition"`
	Notes     string `json:"notes"`
}

func (h *RecordHandler) Grade(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req gradeReq
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.lifecycle.RecordGrade(c.Request.Context(), lifecycle.RecordGradeCommand{
		BookingID: id,
		AssetID:   c.Param("assetId"),
		Grade:     catalog.Grade(req.Grade),
		Condition: req.Condition,
		Notes:     req.Notes,
		GradedBy:  middleware.CallerActor(c).ID,
	})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rec)
}

type sanitisationReq struct {
	Method         string `json:"method"`
	MethodDetails  string `json:"methodDetails"`
	CertificateID  string `json:"certificateId"`
	CertificateURL string `json:"certificateUrl"`
	Notes          string `json:"notes"`
}

func (h *RecordHandler) Sanitise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req sanitisationReq
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.lifecycle.RecordSanitisation(c.Request.Context(), lifecycle.RecordSanitisationCommand{
		BookingID:      id,
		AssetID:        c.Param("assetId"),
		Method:         records.Method(req.Method),
		MethodDetails:  req.MethodDetails,
		CertificateID:  req.CertificateID,
		CertificateURL: req.CertificateURL,
		Notes:          req.Notes,
		PerformedBy:    middleware.CallerActor(c).ID,
	})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, rec)
}

func (h *RecordHandler) Verify(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rec, err := h.lifecycle.VerifySanitisation(c.Request.Context(), lifecycle.VerifySanitisationCommand{
		RecordID:   id,
		VerifiedBy: middleware.CallerActor(c).ID,
	})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rec)
}
