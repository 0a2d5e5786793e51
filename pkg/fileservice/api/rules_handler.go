package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-fileservice/pkg/fileservice"
	"github.com/tendant/simple-fileservice/pkg/fileservice/transform"
)

// RulesHandler exposes the transform rule pipeline
type RulesHandler struct {
	service fileservice.Service
}

func NewRulesHandler(service fileservice.Service) *RulesHandler {
	return &RulesHandler{service: service}
}

// Routes returns the router for rule endpoints
func (h *RulesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListRules)
	r.Post("/", h.AddRule)
	return r
}

// RulesResponse lists rules in the order they are applied
type RulesResponse struct {
	Rules []transform.Rule `json:"rules"`
}

// ListRules returns the current rules
func (h *RulesHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, RulesResponse{Rules: h.service.Rules()})
}

// AddRule adds a rule or replaces the replacement of an existing pattern
func (h *RulesHandler) AddRule(w http.ResponseWriter, r *http.Request) {
	var req transform.Rule
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, r, "invalid JSON body")
		return
	}
	if req.Pattern == "" {
		renderBadRequest(w, r, "pattern is required")
		return
	}

	h.service.AddRule(req.Pattern, req.Replacement)
	slog.Info("Rule added", "pattern", req.Pattern)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, RulesResponse{Rules: h.service.Rules()})
}
