package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"carbonsite-engine/internal/audit"
	"carbonsite-engine/internal/auth"
	"carbonsite-engine/internal/observability/metrics"
	screeningapp "carbonsite-engine/internal/screening/application"
	screening "carbonsite-engine/internal/screening/domain"
)

// Handler serves candidate site endpoints.
type Handler struct {
	service     *screeningapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *screeningapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("screening handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes site requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/sites" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/api/v1/sites/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sites/")
	if rest == "" || strings.Contains(rest, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	switch rest {
	case "evaluate":
		h.handleEvaluate(w, r)
	case "top":
		h.handleTop(w, r)
	case "filter":
		h.handleFilter(w, r)
	default:
		h.handleGet(w, r, rest)
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var site screening.Site
	if err := json.NewDecoder(r.Body).Decode(&site); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.service.AddSite(r.Context(), site); err != nil {
		metrics.IncSiteRegistration("error")
		respondSiteError(w, err)
		return
	}
	metrics.IncSiteRegistration("success")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(site)
	h.logAudit(r, audit.ActionSiteCreate, site.SiteID, map[string]any{
		"name":    site.Name,
		"country": site.Country,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sites, err := h.service.ListSites(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sites)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, siteID string) {
	site, err := h.service.GetSite(r.Context(), siteID)
	if err != nil {
		respondSiteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(site)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	scored, err := h.service.EvaluateAll(r.Context(), screening.Weights{})
	if err != nil {
		metrics.ObserveEvaluation("error", time.Since(start))
		respondSiteError(w, err)
		return
	}
	metrics.ObserveEvaluation("success", time.Since(start))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(scored)
}

func (h *Handler) handleTop(w http.ResponseWriter, r *http.Request) {
	n := 5
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	top, err := h.service.TopN(r.Context(), screening.Weights{}, n)
	if err != nil {
		respondSiteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(top)
}

func (h *Handler) handleFilter(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilterQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	matches, err := h.service.Filter(r.Context(), screening.Weights{}, filter)
	if err != nil {
		respondSiteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(matches)
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
		ResourceType: "site",
		ResourceID:   resourceID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func parseFilterQuery(r *http.Request) (screening.Filter, error) {
	var filter screening.Filter
	query := r.URL.Query()
	if raw := query.Get("min_co2_volume_tpy"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.New("min_co2_volume_tpy must be a number")
		}
		filter.MinCO2VolumeTPY = value
	}
	if raw := query.Get("max_power_price_eur_mwh"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.New("max_power_price_eur_mwh must be a number")
		}
		filter.MaxPowerPriceEUR = value
	}
	if raw := query.Get("countries"); raw != "" {
		for _, country := range strings.Split(raw, ",") {
			country = strings.TrimSpace(country)
			if country != "" {
				filter.Countries = append(filter.Countries, country)
			}
		}
	}
	if raw := query.Get("min_total_score"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.New("min_total_score must be a number")
		}
		filter.MinTotalScore = value
	}
	return filter, nil
}

func respondSiteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, screening.ErrDuplicateSite):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, screening.ErrInvalidSite), errors.Is(err, screening.ErrInvalidWeights):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, screening.ErrSiteNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, screening.ErrNoSites):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
