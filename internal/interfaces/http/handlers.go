package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MrTurnables/dpps-prototype/internal/application/service"
	"github.com/MrTurnables/dpps-prototype/internal/domain/detection"
	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
	"github.com/MrTurnables/dpps-prototype/internal/report"
)

const (
	version  = "1.0.0"
	xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services     Services
	health       HealthChecker
	exportPrefix string
	logger       Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, health HealthChecker, exportPrefix string, logger Logger) *Handlers {
	if exportPrefix == "" {
		exportPrefix = "payment-gate"
	}
	return &Handlers{
		services:     services,
		health:       health,
		exportPrefix: exportPrefix,
		logger:       logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ProposalRequest is the body of the validate, export and scan endpoints.
// OpenCases is honored by validate only.
type ProposalRequest struct {
	Invoices  []entity.InvoiceRecord `json:"invoices"`
	Config    *detection.ConfigPatch `json:"config,omitempty"`
	OpenCases bool                   `json:"open_cases,omitempty"`
}

// CompareRequest is the body of the compare endpoint
type CompareRequest struct {
	Current   entity.InvoiceRecord   `json:"current"`
	Candidate entity.InvoiceRecord   `json:"candidate"`
	Config    *detection.ConfigPatch `json:"config,omitempty"`
}

// ValidationResponse adds the per-disposition lists to the report
type ValidationResponse struct {
	*service.ValidationReport
	ApprovedForPayment []entity.InvoiceRecord `json:"approved_for_payment"`
	HeldItems          []service.LineResult   `json:"held_items"`
	ReviewItems        []service.LineResult   `json:"review_items"`
	Cases              []*entity.Case         `json:"cases,omitempty"`
}

// ListInvoicesRequest represents query parameters for listing history
type ListInvoicesRequest struct {
	VendorID string `form:"vendor_id"`
	Limit    int    `form:"limit"`
}

// ListCasesRequest represents query parameters for listing cases
type ListCasesRequest struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
}

// CaseActionRequest is the body of the case action endpoint
type CaseActionRequest struct {
	Action string `json:"action" binding:"required"`
	Notes  string `json:"notes"`
}

// CaseNoteRequest is the body of the case note endpoint
type CaseNoteRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   version,
	}

	if h.health != nil {
		if err := h.health.Health(c.Request.Context()); err != nil {
			h.logger.Error("Health check failed", "error", err)
			response.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, Response{
				Success: false,
				Data:    response,
				Error:   "database unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// ValidateProposal handles POST /api/payment-gate/validate
func (h *Handlers) ValidateProposal(c *gin.Context) {
	req, rep, ok := h.validate(c)
	if !ok {
		return
	}

	resp := ValidationResponse{
		ValidationReport:   rep,
		ApprovedForPayment: rep.Approved(),
		HeldItems:          rep.Held(),
		ReviewItems:        rep.Review(),
	}

	if req.OpenCases {
		cases, err := h.services.Cases.Open(c.Request.Context(), rep)
		if err != nil {
			h.fail(c, err, "failed to open cases")
			return
		}
		resp.Cases = cases
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// ExportProposal handles POST /api/payment-gate/export
func (h *Handlers) ExportProposal(c *gin.Context) {
	_, rep, ok := h.validate(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, rep); err != nil {
		h.logger.Error("Failed to render payment gate workbook", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to export report",
		})
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", h.exportPrefix, time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

// Compare handles POST /api/detection/compare
func (h *Handlers) Compare(c *gin.Context) {
	var req CompareRequest
	if !h.bind(c, &req) {
		return
	}

	cfg, ok := h.effectiveConfig(c, req.Config)
	if !ok {
		return
	}

	result, err := h.services.Gate.Compare(req.Current, req.Candidate, cfg)
	if err != nil {
		h.fail(c, err, "failed to compare invoices")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// Scan handles POST /api/detection/scan
func (h *Handlers) Scan(c *gin.Context) {
	var req ProposalRequest
	if !h.bind(c, &req) {
		return
	}

	cfg, ok := h.effectiveConfig(c, req.Config)
	if !ok {
		return
	}

	matches, err := h.services.Gate.Scan(req.Invoices, cfg)
	if err != nil {
		h.fail(c, err, "failed to scan proposal")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: matches})
}

// GetConfig handles GET /api/config
func (h *Handlers) GetConfig(c *gin.Context) {
	cfg, err := h.services.Config.Get(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to load config")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cfg})
}

// UpdateConfig handles PATCH /api/config
func (h *Handlers) UpdateConfig(c *gin.Context) {
	var patch detection.ConfigPatch
	if !h.bind(c, &patch) {
		return
	}

	cfg, err := h.services.Config.Update(c.Request.Context(), &patch)
	if err != nil {
		h.fail(c, err, "failed to update config")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cfg})
}

// ResetConfig handles POST /api/config/reset
func (h *Handlers) ResetConfig(c *gin.Context) {
	cfg, err := h.services.Config.Reset(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to reset config")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cfg})
}

// RecordInvoice handles POST /api/invoices
func (h *Handlers) RecordInvoice(c *gin.Context) {
	var invoice entity.InvoiceRecord
	if !h.bind(c, &invoice) {
		return
	}

	if err := h.services.History.Record(c.Request.Context(), &invoice); err != nil {
		h.fail(c, err, "failed to record invoice")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: invoice})
}

// ListInvoices handles GET /api/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	invoices, err := h.services.History.List(c.Request.Context(), req.VendorID, req.Limit)
	if err != nil {
		h.fail(c, err, "failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: invoices})
}

// ListCases handles GET /api/cases
func (h *Handlers) ListCases(c *gin.Context) {
	var req ListCasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	cases, err := h.services.Cases.List(c.Request.Context(), req.Status, req.Limit)
	if err != nil {
		h.fail(c, err, "failed to list cases")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cases})
}

// GetCase handles GET /api/cases/:id
func (h *Handlers) GetCase(c *gin.Context) {
	detail, err := h.services.Cases.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load case")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: detail})
}

// CaseAction handles POST /api/cases/:id/action
func (h *Handlers) CaseAction(c *gin.Context) {
	var req CaseActionRequest
	if !h.bind(c, &req) {
		return
	}

	detail, err := h.services.Cases.Act(c.Request.Context(), c.Param("id"), entity.CaseAction(req.Action), req.Notes)
	if err != nil {
		h.fail(c, err, "failed to apply case action")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: detail})
}

// AddCaseNote handles POST /api/cases/:id/notes
func (h *Handlers) AddCaseNote(c *gin.Context) {
	var req CaseNoteRequest
	if !h.bind(c, &req) {
		return
	}

	activity, err := h.services.Cases.AddNote(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		h.fail(c, err, "failed to add case note")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: activity})
}

// DashboardMetrics handles GET /api/dashboard/metrics
func (h *Handlers) DashboardMetrics(c *gin.Context) {
	summary, err := h.services.Cases.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to load dashboard metrics")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// validate decodes a proposal and runs it through the gate, writing the
// error response itself when it returns false
func (h *Handlers) validate(c *gin.Context) (*ProposalRequest, *service.ValidationReport, bool) {
	var req ProposalRequest
	if !h.bind(c, &req) {
		return nil, nil, false
	}

	cfg, ok := h.effectiveConfig(c, req.Config)
	if !ok {
		return nil, nil, false
	}

	rep, err := h.services.Gate.Validate(c.Request.Context(), req.Invoices, cfg)
	if err != nil {
		h.fail(c, err, "failed to validate payments")
		return nil, nil, false
	}
	return &req, rep, true
}

func (h *Handlers) effectiveConfig(c *gin.Context, patch *detection.ConfigPatch) (detection.DetectionConfig, bool) {
	cfg, err := h.services.Config.Effective(c.Request.Context(), patch)
	if err != nil {
		h.fail(c, err, "failed to load config")
		return detection.DetectionConfig{}, false
	}
	return cfg, true
}

func (h *Handlers) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Error("Invalid request body", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return false
	}
	return true
}

// fail maps input errors to 4xx and everything else to 500
func (h *Handlers) fail(c *gin.Context, err error, msg string) {
	switch {
	case isClientError(err):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	case errors.Is(err, service.ErrCaseNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
		return
	case errors.Is(err, service.ErrCaseClosed):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		return
	}

	h.logger.Error(msg, "path", c.FullPath(), "error", err)
	status := http.StatusInternalServerError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, Response{Success: false, Error: msg})
}

func isClientError(err error) bool {
	return errors.Is(err, service.ErrEmptyProposal) ||
		errors.Is(err, service.ErrInvalidConfig) ||
		errors.Is(err, service.ErrInvalidInvoice) ||
		errors.Is(err, service.ErrInvalidCaseAction)
}
