package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/lexora/translation-gateway/internal/services"
	xhttp "github.com/lexora/translation-gateway/pkg/http"
)

type AdminWalletService interface {
	ApproveBonus(ctx context.Context, userID string, amount int64) (int64, error)
}

// AdminHandler exposes operator endpoints: granting balance to any
// user and inspecting any user's history.
type AdminHandler struct {
	wallets AdminWalletService
	history HistoryService
}

func RegisterAdminRoutes(e *router.Group, h *AdminHandler, admin Middleware) {
	e.POST("/admin/topup", admin(h.TopUp))
	e.GET("/admin/translations", admin(h.ListTranslations))
	e.GET("/admin/transactions", admin(h.ListTransactions))
}

func NewAdminHandler(walletService AdminWalletService, historyService HistoryService) *AdminHandler {
	return &AdminHandler{
		wallets: walletService,
		history: historyService,
	}
}

type adminTopUpRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

func (h *AdminHandler) TopUp(ctx *xhttp.RequestCtx) {
	var req adminTopUpRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(ctx, 400, "user_id is required")
		return
	}
	balance, err := h.wallets.ApproveBonus(ctx, req.UserID, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			writeError(ctx, 400, err.Error())
			return
		}
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, balanceResponse{UserID: req.UserID, Balance: balance})
}

func (h *AdminHandler) ListTranslations(ctx *xhttp.RequestCtx) {
	id := query(ctx, "user_id")
	if id == "" {
		writeError(ctx, 400, "user_id is required")
		return
	}
	items, total, err := h.history.ListTranslations(ctx, historyFilter(ctx, id))
	if err != nil {
		writeError(ctx, historyStatus(err), err.Error())
		return
	}
	writeJSON(ctx, 200, translationListResponse{Items: items, Total: total})
}

func (h *AdminHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	id := query(ctx, "user_id")
	if id == "" {
		writeError(ctx, 400, "user_id is required")
		return
	}
	items, total, err := h.history.ListTransactions(ctx, historyFilter(ctx, id))
	if err != nil {
		writeError(ctx, historyStatus(err), err.Error())
		return
	}
	writeJSON(ctx, 200, transactionListResponse{Items: items, Total: total})
}
