package http

import (
	"errors"
	"net/http"
	"time"

	"kasklub/internal/auth"
	"kasklub/internal/core"
	"kasklub/internal/services"
	"kasklub/internal/storage"
)

type handlers struct {
	svc  *services.LedgerService
	gate *auth.Gate
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// transactionResponse is the list-endpoint row. The two optional amount
// fields mirror Amount into whichever one matches the category; the
// frontend renders them as separate table columns.
type transactionResponse struct {
	ID            string   `json:"id"`
	Date          string   `json:"date"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Amount        float64  `json:"amount"`
	IncomeAmount  *float64 `json:"incomeAmount,omitempty"`
	ExpenseAmount *float64 `json:"expenseAmount,omitempty"`
}

// storedTransactionResponse is returned from the create endpoint: the full
// stored record including the generated identity.
type storedTransactionResponse struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	CreatedAt   string  `json:"createdAt"`
}

type summaryResponse struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	Balance      float64 `json:"balance"`
}

type createTransactionRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Amount      any    `json:"amount"`
}

func (h *handlers) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Badminton club treasury API"})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	token, err := h.gate.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Username or password incorrect")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Token: token})
}

func (h *handlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	out := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionResponse(tx)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute summary")
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TotalIncome:  s.TotalIncome.Float(),
		TotalExpense: s.TotalExpense.Float(),
		Balance:      s.Balance.Float(),
	})
}

func (h *handlers) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	occurredOn, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid transaction date")
		return
	}

	cents, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Amount must be a positive number")
		return
	}

	stored, err := h.svc.Create(r.Context(), core.Transaction{
		OccurredOn:  occurredOn,
		Description: req.Description,
		Category:    core.Category(req.Category),
		Amount:      core.Money{Cents: cents},
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidCategory):
			writeError(w, http.StatusUnprocessableEntity, "Category must be 'income' or 'expense'")
		case errors.Is(err, core.ErrEmptyDescription):
			writeError(w, http.StatusUnprocessableEntity, "Description is required")
		case errors.Is(err, core.ErrInvalidAmount),
			errors.Is(err, core.ErrInvalidDate):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Failed to save transaction")
		}
		return
	}

	writeJSON(w, http.StatusOK, storedTransactionResponse{
		ID:          stored.ID,
		Date:        stored.OccurredOn.Format(time.RFC3339),
		Description: stored.Description,
		Category:    string(stored.Category),
		Amount:      stored.Amount.Float(),
		CreatedAt:   stored.CreatedAt.Format(time.RFC3339),
	})
}

func (h *handlers) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Transaction id is required")
		return
	}

	err := h.svc.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Transaction deleted successfully"})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) ready(w http.ResponseWriter, r *http.Request) {
	// The store has no connection pool worth probing; reaching the handler
	// means the process is serving.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          tx.ID,
		Date:        tx.DisplayDate(),
		Description: tx.Description,
		Category:    string(tx.Category),
		Amount:      tx.Amount.Float(),
	}
	amount := tx.Amount.Float()
	switch tx.Category {
	case core.Income:
		resp.IncomeAmount = &amount
	case core.Expense:
		resp.ExpenseAmount = &amount
	}
	return resp
}
