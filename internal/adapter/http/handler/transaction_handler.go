package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/valcoin/internal/adapter/http/dto"
	"github.com/iho/valcoin/internal/usecase"
)

// TransactionHandler handles ledger transaction HTTP requests.
type TransactionHandler struct {
	ledgerUC *usecase.LedgerUseCase
	queryUC  *usecase.TransactionQueryUseCase
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(
	ledgerUC *usecase.LedgerUseCase,
	queryUC *usecase.TransactionQueryUseCase,
) *TransactionHandler {
	return &TransactionHandler{
		ledgerUC: ledgerUC,
		queryUC:  queryUC,
	}
}

// List returns enriched user-intent transactions, newest first. The
// filter query accepts the named shortcuts today, week and month, or an
// explicit start_date/end_date RFC 3339 range.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	input := usecase.ListInput{
		TimeFilter: usecase.TimeFilter(r.URL.Query().Get("filter")),
		Limit:      parseIntQuery(r, "limit", 0),
		Offset:     parseIntQuery(r, "offset", 0),
	}

	if v := r.URL.Query().Get("start_date"); v != "" {
		start, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date", err.Error())
			return
		}

		input.StartDate = &start
	}

	if v := r.URL.Query().Get("end_date"); v != "" {
		end, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date", err.Error())
			return
		}

		input.EndDate = &end
	}

	rows, err := h.queryUC.List(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromEnriched(rows))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	row, err := h.queryUC.Get(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromEnriched(row))
}

// GetGroup returns every row sharing a transaction's group, including
// system-generated companions.
func (h *TransactionHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	rows, err := h.queryUC.GetGroup(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction group", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromEnriched(rows))
}

// Create creates a manual transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	created, err := h.ledgerUC.CreateManualTransaction(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(created))
}

// Update edits a pending transaction.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	updated, err := h.ledgerUC.UpdateTransaction(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(updated))
}

// Delete removes a pending transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	if err := h.ledgerUC.DeleteTransaction(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete transaction", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Approve commits a pending transaction's balance effect.
func (h *TransactionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	approved, err := h.ledgerUC.ApproveTransaction(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to approve transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(approved))
}

// Reject marks a pending transaction as rejected without balance effect.
func (h *TransactionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.RejectTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rejected, err := h.ledgerUC.RejectTransaction(r.Context(), id, req.Reason)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reject transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(rejected))
}
