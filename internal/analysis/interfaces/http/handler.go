package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	analysisapp "carbonsite-engine/internal/analysis/application"
	analysis "carbonsite-engine/internal/analysis/domain"
	"carbonsite-engine/internal/analysis/interfaces"
	"carbonsite-engine/internal/audit"
	"carbonsite-engine/internal/auth"
	"carbonsite-engine/internal/observability/metrics"
	"carbonsite-engine/internal/policy"
	screening "carbonsite-engine/internal/screening/domain"
)

// Handler serves analysis endpoints.
type Handler struct {
	service     *analysisapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *analysisapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("analysis handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes analysis requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/analysis" {
		switch r.Method {
		case http.MethodPost:
			h.handleRun(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if r.URL.Path == "/api/v1/analysis/whatif" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleWhatIf(w, r)
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/api/v1/analysis/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/analysis/")
	parts := strings.Split(rest, "/")
	if len(parts) < 1 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	reportID := parts[0]

	if len(parts) == 1 {
		h.handleGet(w, r, reportID)
		return
	}
	if len(parts) == 2 && parts[1] == "export.xlsx" {
		h.handleExport(w, r, reportID, "xlsx")
		return
	}
	if len(parts) == 2 && parts[1] == "export.pdf" {
		h.handleExport(w, r, reportID, "pdf")
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	var req analysisapp.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	start := time.Now()
	report, err := h.service.Run(r.Context(), req)
	if err != nil {
		metrics.ObserveAnalysis("error", time.Since(start), 0)
		respondAnalysisError(w, err)
		return
	}
	metrics.ObserveAnalysis("success", time.Since(start), len(report.Sites))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(report)
	h.logAudit(r, audit.ActionAnalysisRun, report.ID, map[string]any{
		"project_type":        report.ProjectType,
		"target_capacity_tpy": report.TargetCapacityTPY,
		"sites":               len(report.Sites),
		"failures":            len(report.Failures),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	reports, err := h.service.List(r.Context(), limit)
	if err != nil {
		respondAnalysisError(w, err)
		return
	}
	if reports == nil {
		reports = []analysis.Report{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reports)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, reportID string) {
	report, err := h.service.Get(r.Context(), reportID)
	if err != nil {
		respondAnalysisError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

func (h *Handler) handleWhatIf(w http.ResponseWriter, r *http.Request) {
	var req analysisapp.WhatIfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	result, err := h.service.WhatIf(r.Context(), req)
	if err != nil {
		metrics.IncWhatIf("error")
		respondAnalysisError(w, err)
		return
	}
	metrics.IncWhatIf("success")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
	h.logAudit(r, audit.ActionAnalysisWhatIf, req.ReportID, map[string]any{
		"site_id": req.SiteID,
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, reportID, format string) {
	start := time.Now()
	report, err := h.service.Get(r.Context(), reportID)
	if err != nil {
		metrics.ObserveReportExport(format, "error", time.Since(start))
		respondAnalysisError(w, err)
		return
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case "xlsx":
		data, err = interfaces.BuildReportXLSX(report)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, err = interfaces.BuildReportPDF(report)
		contentType = "application/pdf"
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
		return
	}
	if err != nil {
		metrics.ObserveReportExport(format, "error", time.Since(start))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.ObserveReportExport(format, "success", time.Since(start))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", reportID, format))
	_, _ = w.Write(data)
	h.logAudit(r, audit.ActionReportExport, reportID, map[string]any{"format": format})
}

func (h *Handler) logAudit(r *http.Request, action, resourceID string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "analysis_report",
		ResourceID:   resourceID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysisapp.ErrInvalidRequest),
		errors.Is(err, screening.ErrInvalidWeights),
		errors.Is(err, analysis.ErrEmptyReportID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, analysis.ErrReportNotFound), errors.Is(err, analysis.ErrSiteNotInReport):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, screening.ErrNoSites):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, policy.ErrCountryNotCovered):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
