package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/internal/services"
	"github.com/lexora/translation-gateway/internal/translator"
	xhttp "github.com/lexora/translation-gateway/pkg/http"
)

type TranslateService interface {
	Process(ctx context.Context, req model.TranslateRequest) (*model.Translation, error)
}

type TaskService interface {
	Enqueue(ctx context.Context, req model.TranslateRequest) (string, error)
	GetStatus(ctx context.Context, taskID string) (model.TaskStatus, *model.Translation, error)
}

type TranslateHandler struct {
	svc   TranslateService
	tasks TaskService
}

func RegisterTranslateRoutes(e *router.Group, h *TranslateHandler, auth Middleware) {
	e.POST("/translate", auth(h.Translate))
	e.POST("/translate/queue", auth(h.TranslateQueued))
	e.GET("/translate/task/{id}", auth(h.TaskStatus))
}

func NewTranslateHandler(translateService TranslateService, taskService TaskService) *TranslateHandler {
	return &TranslateHandler{
		svc:   translateService,
		tasks: taskService,
	}
}

type translateRequest struct {
	InputText  string `json:"input_text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type taskResponse struct {
	TaskID string             `json:"task_id"`
	Status model.TaskStatus   `json:"status"`
	Result *model.Translation `json:"result,omitempty"`
}

func (h *TranslateHandler) Translate(ctx *xhttp.RequestCtx) {
	var req translateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	record, err := h.svc.Process(ctx, model.TranslateRequest{
		UserID:     userID(ctx),
		InputText:  req.InputText,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	})
	if err != nil {
		writeError(ctx, translateStatus(err), err.Error())
		return
	}
	writeJSON(ctx, 200, record)
}

func (h *TranslateHandler) TranslateQueued(ctx *xhttp.RequestCtx) {
	var req translateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	taskID, err := h.tasks.Enqueue(ctx, model.TranslateRequest{
		UserID:     userID(ctx),
		InputText:  req.InputText,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	})
	if err != nil {
		writeError(ctx, translateStatus(err), err.Error())
		return
	}
	writeJSON(ctx, 202, taskResponse{TaskID: taskID, Status: model.TaskPending})
}

func (h *TranslateHandler) TaskStatus(ctx *xhttp.RequestCtx) {
	taskID, _ := ctx.UserValue("id").(string)
	if taskID == "" {
		writeError(ctx, 400, "task id is required")
		return
	}
	status, record, err := h.tasks.GetStatus(ctx, taskID)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, taskResponse{TaskID: taskID, Status: status, Result: record})
}

// translateStatus maps protocol errors to HTTP statuses. Insufficient
// funds is 402 so clients can distinguish it from validation failures.
func translateStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrEmptyInput), errors.Is(err, model.ErrInvalidLang):
		return 400
	case errors.Is(err, services.ErrInsufficientFunds):
		return 402
	case errors.Is(err, services.ErrUserNotFound):
		return 404
	case errors.Is(err, translator.ErrUnsupportedLanguagePair):
		return 422
	default:
		return 500
	}
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func queryInt(ctx *xhttp.RequestCtx, key string) int {
	n, _ := strconv.Atoi(query(ctx, key))
	return n
}
