package handler

import (
	"net/http"

	"github.com/iho/valcoin/internal/adapter/http/dto"
	"github.com/iho/valcoin/internal/usecase"
)

// LegadoHandler handles legado audit record HTTP requests.
type LegadoHandler struct {
	queryUC *usecase.TransactionQueryUseCase
}

// NewLegadoHandler creates a new LegadoHandler.
func NewLegadoHandler(queryUC *usecase.TransactionQueryUseCase) *LegadoHandler {
	return &LegadoHandler{queryUC: queryUC}
}

// List returns legado records, newest first.
func (h *LegadoHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 0)
	offset := parseIntQuery(r, "offset", 0)

	legados, err := h.queryUC.ListLegados(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list legados", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LegadosFromDomain(legados))
}
