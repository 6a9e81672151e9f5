package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/lexora/translation-gateway/internal/model"
	xhttp "github.com/lexora/translation-gateway/pkg/http"
)

type HistoryService interface {
	ListTranslations(ctx context.Context, f model.HistoryFilter) ([]*model.Translation, int64, error)
	ListTransactions(ctx context.Context, f model.HistoryFilter) ([]*model.Transaction, int64, error)
}

type HistoryHandler struct {
	svc HistoryService
}

func RegisterHistoryRoutes(e *router.Group, h *HistoryHandler, auth Middleware) {
	e.GET("/history/translations", auth(h.ListTranslations))
	e.GET("/history/transactions", auth(h.ListTransactions))
}

func NewHistoryHandler(historyService HistoryService) *HistoryHandler {
	return &HistoryHandler{
		svc: historyService,
	}
}

type translationListResponse struct {
	Items []*model.Translation `json:"items"`
	Total int64                `json:"total"`
}

type transactionListResponse struct {
	Items []*model.Transaction `json:"items"`
	Total int64                `json:"total"`
}

func (h *HistoryHandler) ListTranslations(ctx *xhttp.RequestCtx) {
	items, total, err := h.svc.ListTranslations(ctx, historyFilter(ctx, userID(ctx)))
	if err != nil {
		writeError(ctx, historyStatus(err), err.Error())
		return
	}
	writeJSON(ctx, 200, translationListResponse{Items: items, Total: total})
}

func (h *HistoryHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	items, total, err := h.svc.ListTransactions(ctx, historyFilter(ctx, userID(ctx)))
	if err != nil {
		writeError(ctx, historyStatus(err), err.Error())
		return
	}
	writeJSON(ctx, 200, transactionListResponse{Items: items, Total: total})
}

func historyFilter(ctx *xhttp.RequestCtx, userID string) model.HistoryFilter {
	return model.HistoryFilter{
		UserID: userID,
		Limit:  queryInt(ctx, "limit"),
		Offset: queryInt(ctx, "offset"),
	}
}

func historyStatus(err error) int {
	if errors.Is(err, model.ErrInvalidPagination) {
		return 400
	}
	return 500
}
