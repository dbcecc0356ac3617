package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/category"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/shared/middleware"
)

type TransactionHandler struct {
	transactionRepo transaction.Repository
	accountRepo     account.Repository
}

func NewTransactionHandler(transactionRepo transaction.Repository, accountRepo account.Repository) *TransactionHandler {
	return &TransactionHandler{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
	}
}

type CreateTransactionRequest struct {
	AccountID    string `json:"accountId"`
	Amount       string `json:"amount"`
	Date         string `json:"date"`
	Description  string `json:"description"`
	MerchantName string `json:"merchantName,omitempty"`
	Category     string `json:"category,omitempty"`
}

type UpdateTransactionRequest struct {
	Amount       *string `json:"amount,omitempty"`
	Date         *string `json:"date,omitempty"`
	Description  *string `json:"description,omitempty"`
	MerchantName *string `json:"merchantName,omitempty"`
	Category     *string `json:"category,omitempty"`
}

// HandleListTransactions returns the authenticated user's transactions,
// newest first, with optional account, date window and category filters.
func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter := transaction.ListFilter{}

	if accountID := r.URL.Query().Get("accountId"); accountID != "" {
		// Verify account ownership before filtering on it.
		acc, err := h.accountRepo.GetByID(r.Context(), accountID)
		if err != nil {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		if acc.UserID != userID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		filter.AccountID = accountID
	}

	if startStr := r.URL.Query().Get("startDate"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			http.Error(w, "Invalid startDate format (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		filter.StartDate = &start
	}
	if endStr := r.URL.Query().Get("endDate"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			http.Error(w, "Invalid endDate format (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		filter.EndDate = &end
	}

	if cat := r.URL.Query().Get("category"); cat != "" {
		if !category.IsInternal(cat) {
			http.Error(w, "Unknown category", http.StatusBadRequest)
			return
		}
		filter.Category = category.Category(cat)
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			filter.Limit = parsedLimit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			filter.Offset = parsedOffset
		}
	}

	transactions, err := h.transactionRepo.List(r.Context(), userID, filter)
	if err != nil {
		log.Printf("Error listing transactions for user %d: %v", userID, err)
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = []*transaction.Transaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactions)
}

// HandleCreateTransaction creates a manually entered transaction. Manual
// rows carry no provider transaction id, so sync leaves them alone.
func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.AccountID == "" || req.Amount == "" || req.Date == "" || req.Description == "" {
		http.Error(w, "accountId, amount, date, and description are required", http.StatusBadRequest)
		return
	}

	// Verify account ownership
	acc, err := h.accountRepo.GetByID(r.Context(), req.AccountID)
	if err != nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if acc.UserID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		http.Error(w, "Invalid date format (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	cat := category.Other
	if req.Category != "" {
		if !category.IsInternal(req.Category) {
			http.Error(w, "Unknown category", http.StatusBadRequest)
			return
		}
		cat = category.Category(req.Category)
	}

	created, err := h.transactionRepo.Create(r.Context(), transaction.CreateParams{
		ID:           uuid.NewString(),
		UserID:       userID,
		AccountID:    req.AccountID,
		Amount:       amount,
		Date:         date,
		Description:  req.Description,
		MerchantName: req.MerchantName,
		Category:     cat,
	})
	if err != nil {
		log.Printf("Error creating transaction for user %d: %v", userID, err)
		http.Error(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// HandleGetTransaction returns a single transaction owned by the
// authenticated user.
func (h *TransactionHandler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" {
		http.Error(w, "Transaction ID is required", http.StatusBadRequest)
		return
	}

	tx, err := h.getOwned(r, id, userID)
	if err != nil {
		writeTransactionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tx)
}

// HandleUpdateTransaction applies partial updates to a transaction
func (h *TransactionHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" {
		http.Error(w, "Transaction ID is required", http.StatusBadRequest)
		return
	}

	if _, err := h.getOwned(r, id, userID); err != nil {
		writeTransactionError(w, err)
		return
	}

	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := transaction.UpdateParams{
		Description:  req.Description,
		MerchantName: req.MerchantName,
	}

	if req.Amount != nil {
		amount, err := decimal.NewFromString(strings.TrimSpace(*req.Amount))
		if err != nil {
			http.Error(w, "Invalid amount", http.StatusBadRequest)
			return
		}
		params.Amount = &amount
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			http.Error(w, "Invalid date format (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		params.Date = &date
	}
	if req.Category != nil {
		if !category.IsInternal(*req.Category) {
			http.Error(w, "Unknown category", http.StatusBadRequest)
			return
		}
		cat := category.Category(*req.Category)
		params.Category = &cat
	}

	updated, err := h.transactionRepo.Update(r.Context(), id, params)
	if err != nil {
		writeTransactionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// HandleDeleteTransaction removes a transaction owned by the authenticated user
func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" {
		http.Error(w, "Transaction ID is required", http.StatusBadRequest)
		return
	}

	if _, err := h.getOwned(r, id, userID); err != nil {
		writeTransactionError(w, err)
		return
	}

	if err := h.transactionRepo.Delete(r.Context(), id); err != nil {
		writeTransactionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleTransactionByID routes method-specific handlers for /api/transactions/{id}
func (h *TransactionHandler) HandleTransactionByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.HandleGetTransaction(w, r)
	case http.MethodPut, http.MethodPatch:
		h.HandleUpdateTransaction(w, r)
	case http.MethodDelete:
		h.HandleDeleteTransaction(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TransactionHandler) getOwned(r *http.Request, id string, userID int64) (*transaction.Transaction, error) {
	tx, err := h.transactionRepo.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, transaction.ErrTransactionNotFound
	}
	return tx, nil
}

func writeTransactionError(w http.ResponseWriter, err error) {
	if errors.Is(err, transaction.ErrTransactionNotFound) {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}
	log.Printf("Transaction handler error: %v", err)
	http.Error(w, "Internal error", http.StatusInternalServerError)
}
