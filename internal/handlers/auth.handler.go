package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/internal/services"
	xhttp "github.com/lexora/translation-gateway/pkg/http"
)

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	GetProfile(ctx context.Context, userID string) (*model.User, error)
}

type AuthHandler struct {
	svc AuthService
}

func RegisterAuthRoutes(e *router.Group, h *AuthHandler, auth Middleware) {
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)
	e.GET("/auth/me", auth(h.Me))
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{
		svc: authService,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *AuthHandler) Register(ctx *xhttp.RequestCtx) {
	var req credentialsRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	user, err := h.svc.Register(ctx, model.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(ctx, 409, err.Error())
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, user)
}

func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req credentialsRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	token, user, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(ctx, 401, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, loginResponse{Token: token, User: user})
}

func (h *AuthHandler) Me(ctx *xhttp.RequestCtx) {
	user, err := h.svc.GetProfile(ctx, userID(ctx))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, user)
}
