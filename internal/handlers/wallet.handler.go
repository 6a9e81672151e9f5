package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/lexora/translation-gateway/internal/services"
	xhttp "github.com/lexora/translation-gateway/pkg/http"
)

type WalletService interface {
	GetBalance(ctx context.Context, userID string) (int64, error)
	TopUp(ctx context.Context, userID string, amount int64) (int64, error)
}

type WalletHandler struct {
	svc WalletService
}

func RegisterWalletRoutes(e *router.Group, h *WalletHandler, auth Middleware) {
	e.GET("/wallet", auth(h.GetWallet))
	e.POST("/wallet/topup", auth(h.TopUp))
}

func NewWalletHandler(walletService WalletService) *WalletHandler {
	return &WalletHandler{
		svc: walletService,
	}
}

type topUpRequest struct {
	Amount int64 `json:"amount"`
}

type balanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

func (h *WalletHandler) GetWallet(ctx *xhttp.RequestCtx) {
	id := userID(ctx)
	balance, err := h.svc.GetBalance(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, balanceResponse{UserID: id, Balance: balance})
}

func (h *WalletHandler) TopUp(ctx *xhttp.RequestCtx) {
	var req topUpRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	id := userID(ctx)
	balance, err := h.svc.TopUp(ctx, id, req.Amount)
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
	writeJSON(ctx, 200, balanceResponse{UserID: id, Balance: balance})
}
