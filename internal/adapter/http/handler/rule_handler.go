package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/valcoin/internal/adapter/http/dto"
	"github.com/iho/valcoin/internal/adapter/http/middleware"
	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
)

// RuleHandler handles rule catalog HTTP requests.
type RuleHandler struct {
	ruleUC   *usecase.RuleUseCase
	ledgerUC *usecase.LedgerUseCase
	checker  *usecase.ApplicabilityChecker
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(
	ruleUC *usecase.RuleUseCase,
	ledgerUC *usecase.LedgerUseCase,
	checker *usecase.ApplicabilityChecker,
) *RuleHandler {
	return &RuleHandler{
		ruleUC:   ruleUC,
		ledgerUC: ledgerUC,
		checker:  checker,
	}
}

// List returns all active rules.
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.ruleUC.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list rules", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RulesFromDomain(rules))
}

// ListApplicable returns the rules the origin may apply right now, each
// annotated with its remaining period-limit budget. The origin defaults
// to the caller; origin_id lets an admin list on another user's behalf.
func (h *RuleHandler) ListApplicable(w http.ResponseWriter, r *http.Request) {
	origin := r.URL.Query().Get("origin_id")
	if origin == "" {
		origin = middleware.CallerID(r.Context())
	}

	input := usecase.ListApplicableInput{
		OriginUserID:      origin,
		DestinationRole:   domain.Role(r.URL.Query().Get("destination_role")),
		DestinationUserID: r.URL.Query().Get("destination_user_id"),
		DisciplineID:      r.URL.Query().Get("discipline_id"),
	}

	rules, err := h.ruleUC.ListApplicable(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list applicable rules", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ApplicableRulesFromUseCase(rules))
}

// Create creates a new rule.
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rule, err := h.ruleUC.Create(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create rule", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.RuleFromDomain(rule))
}

// Update applies a partial edit to a rule.
func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing rule ID", "")
		return
	}

	var req dto.UpdateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rule, err := h.ruleUC.Update(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update rule", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RuleFromDomain(rule))
}

// Delete removes a rule.
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing rule ID", "")
		return
	}

	if err := h.ruleUC.Delete(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete rule", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Check runs the dry-run applicability check without committing anything.
func (h *RuleHandler) Check(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing rule ID", "")
		return
	}

	var req dto.CheckApplicabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	report, err := h.checker.Check(r.Context(), req.ToUseCaseInput(id, middleware.CallerID(r.Context())), time.Now().UTC())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to check rule", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ApplicabilityFromDomain(report))
}

// Apply validates and commits a rule application for the caller.
func (h *RuleHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing rule ID", "")
		return
	}

	var req dto.ApplyRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	created, err := h.ledgerUC.ApplyRule(r.Context(), req.ToUseCaseInput(id, middleware.CallerID(r.Context())))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to apply rule", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(created))
}
