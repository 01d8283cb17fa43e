package handler

import (
	"moneytracker/internal/adapter/http/dto"
	"moneytracker/internal/adapter/http/middleware"
	"moneytracker/internal/core/domain"
	"moneytracker/internal/core/ports"
	"moneytracker/pkg/apperror"
	"moneytracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUserID extracts the authenticated user's ID set by the JWT middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	walletSvc    ports.WalletService
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc, reportingSvc: reportingSvc}
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, err := h.walletSvc.CreateWallet(c.Request.Context(), userID, domain.WalletKind(req.Kind))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toWalletResponse(wallet))
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	wallets, err := h.walletSvc.ListWallets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]dto.WalletResponse, 0, len(wallets))
	for i := range wallets {
		resp = append(resp, toWalletResponse(&wallets[i]))
	}
	response.OK(c, resp)
}

// Balance handles GET /api/v1/wallets/balance.
func (h *WalletHandler) Balance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	summary, err := h.reportingSvc.BalanceSummary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceSummaryResponse{
		Cash:   summary.Cash,
		Online: summary.Online,
		Total:  summary.Total,
	})
}

func toWalletResponse(w *domain.Wallet) dto.WalletResponse {
	return dto.WalletResponse{
		ID:        w.ID.String(),
		Kind:      string(w.Kind),
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
