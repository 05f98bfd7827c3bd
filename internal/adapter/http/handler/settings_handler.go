package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iho/valcoin/internal/adapter/http/dto"
	"github.com/iho/valcoin/internal/usecase"
)

// SettingsHandler handles settings HTTP requests.
type SettingsHandler struct {
	settingsUC *usecase.SettingsUseCase
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsUC *usecase.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{settingsUC: settingsUC}
}

// List returns every setting keyed by name.
func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsUC.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list settings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// Update upserts the posted settings atomically.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, "empty settings payload", "")
		return
	}

	if err := h.settingsUC.Update(r.Context(), req); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update settings", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
