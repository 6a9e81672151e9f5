package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAdminWalletService struct {
	mock.Mock
}

func (m *MockAdminWalletService) ApproveBonus(ctx context.Context, userID string, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func TestAdminHandler_TopUp(t *testing.T) {
	t.Run("grants balance to the named user", func(t *testing.T) {
		wallets := new(MockAdminWalletService)
		handler := NewAdminHandler(wallets, new(MockHistoryService))

		bodyBytes, _ := json.Marshal(adminTopUpRequest{UserID: "user-7", Amount: 500})
		wallets.On("ApproveBonus", mock.Anything, "user-7", int64(500)).Return(int64(500), nil)

		ctx := authedTestContext("POST", "/admin/topup", bodyBytes, "admin-1")
		handler.TopUp(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response balanceResponse
		err := json.Unmarshal(ctx.Response.Body(), &response)
		require.NoError(t, err)
		assert.Equal(t, "user-7", response.UserID)
		assert.Equal(t, int64(500), response.Balance)

		wallets.AssertExpectations(t)
	})

	t.Run("missing user_id returns 400", func(t *testing.T) {
		handler := NewAdminHandler(new(MockAdminWalletService), new(MockHistoryService))

		bodyBytes, _ := json.Marshal(adminTopUpRequest{Amount: 500})
		ctx := authedTestContext("POST", "/admin/topup", bodyBytes, "admin-1")
		handler.TopUp(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("non-positive amount returns 400", func(t *testing.T) {
		wallets := new(MockAdminWalletService)
		handler := NewAdminHandler(wallets, new(MockHistoryService))

		bodyBytes, _ := json.Marshal(adminTopUpRequest{UserID: "user-7", Amount: 0})
		wallets.On("ApproveBonus", mock.Anything, "user-7", int64(0)).Return(int64(0), services.ErrInvalidAmount)

		ctx := authedTestContext("POST", "/admin/topup", bodyBytes, "admin-1")
		handler.TopUp(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("unknown user returns 404", func(t *testing.T) {
		wallets := new(MockAdminWalletService)
		handler := NewAdminHandler(wallets, new(MockHistoryService))

		bodyBytes, _ := json.Marshal(adminTopUpRequest{UserID: "ghost", Amount: 500})
		wallets.On("ApproveBonus", mock.Anything, "ghost", int64(500)).Return(int64(0), services.ErrUserNotFound)

		ctx := authedTestContext("POST", "/admin/topup", bodyBytes, "admin-1")
		handler.TopUp(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})
}

func TestAdminHandler_Listings(t *testing.T) {
	t.Run("lists any user's translations", func(t *testing.T) {
		history := new(MockHistoryService)
		handler := NewAdminHandler(new(MockAdminWalletService), history)

		items := []*model.Translation{{ID: "tr-1", UserID: "user-7"}}
		history.On("ListTranslations", mock.Anything, model.HistoryFilter{UserID: "user-7"}).Return(items, int64(1), nil)

		ctx := authedTestContext("GET", "/admin/translations?user_id=user-7", nil, "admin-1")
		handler.ListTranslations(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		history.AssertExpectations(t)
	})

	t.Run("requires user_id", func(t *testing.T) {
		handler := NewAdminHandler(new(MockAdminWalletService), new(MockHistoryService))

		ctx := authedTestContext("GET", "/admin/transactions", nil, "admin-1")
		handler.ListTransactions(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("lists any user's transactions", func(t *testing.T) {
		history := new(MockHistoryService)
		handler := NewAdminHandler(new(MockAdminWalletService), history)

		items := []*model.Transaction{{ID: "tx-1", UserID: "user-7", Amount: 500, Type: model.TransactionTopup}}
		history.On("ListTransactions", mock.Anything, model.HistoryFilter{UserID: "user-7"}).Return(items, int64(1), nil)

		ctx := authedTestContext("GET", "/admin/transactions?user_id=user-7", nil, "admin-1")
		handler.ListTransactions(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		history.AssertExpectations(t)
	})
}
