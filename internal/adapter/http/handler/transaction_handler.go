package handler

import (
	"time"

	"moneytracker/internal/adapter/http/dto"
	"moneytracker/internal/core/domain"
	"moneytracker/internal/core/ports"
	"moneytracker/pkg/apperror"
	"moneytracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles ledger entry endpoints.
type TransactionHandler struct {
	ledgerSvc    ports.LedgerService
	reportingSvc ports.ReportingService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerSvc ports.LedgerService, reportingSvc ports.ReportingService) *TransactionHandler {
	return &TransactionHandler{ledgerSvc: ledgerSvc, reportingSvc: reportingSvc}
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	entry, err := h.ledgerSvc.CreateEntry(c.Request.Context(), userID, ports.CreateEntryRequest{
		Kind:          domain.EntryKind(req.Kind),
		Amount:        req.Amount,
		PersonID:      req.PersonID,
		FromWalletID:  req.FromWalletID,
		ToWalletID:    req.ToWalletID,
		Description:   req.Description,
		EffectiveDate: req.EffectiveDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(entry))
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var filter ports.EntryFilter
	if s := c.Query("kind"); s != "" {
		kind := domain.EntryKind(s)
		filter.Kind = &kind
	}
	if s := c.Query("wallet_kind"); s != "" {
		kind := domain.WalletKind(s)
		filter.WalletKind = &kind
	}
	if s := c.Query("from"); s != "" {
		v, err := time.Parse("2006-01-02", s)
		if err != nil {
			response.Error(c, apperror.Validation("from must be a date in YYYY-MM-DD format"))
			return
		}
		filter.From = &v
	}
	if s := c.Query("to"); s != "" {
		v, err := time.Parse("2006-01-02", s)
		if err != nil {
			response.Error(c, apperror.Validation("to must be a date in YYYY-MM-DD format"))
			return
		}
		filter.To = &v
	}

	entries, err := h.reportingSvc.ListEntries(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(entries))
	for i := range entries {
		items = append(items, toTransactionResponse(&entries[i]))
	}
	response.OK(c, items)
}

// Reverse handles POST /api/v1/transactions/:id/reverse.
func (h *TransactionHandler) Reverse(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	reversal, err := h.ledgerSvc.ReverseEntry(c.Request.Context(), userID, entryID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(reversal))
}

// toTransactionResponse converts domain.Entry to DTO.
func toTransactionResponse(e *domain.Entry) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:            e.ID.String(),
		Kind:          string(e.Kind),
		Amount:        e.Amount,
		PersonID:      uuidPtrString(e.PersonID),
		FromWalletID:  uuidPtrString(e.FromWalletID),
		ToWalletID:    uuidPtrString(e.ToWalletID),
		Description:   e.Description,
		EffectiveDate: e.EffectiveDate.Format("2006-01-02T15:04:05Z07:00"),
		CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		IsReversal:    e.IsReversal,
		ReversedByID:  uuidPtrString(e.ReversedByID),
	}
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
