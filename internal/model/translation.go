package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyInput        = errors.New("input text is empty")
	ErrInvalidLang       = errors.New("invalid language code")
	ErrInvalidPagination = errors.New("invalid pagination parameters")
)

// Translation is an append-only history record. ExternalID carries the
// queue correlation id when the record was produced by a worker task;
// it is unique when present and drives idempotent replay. Cost is nil
// when no debit happened for this record.
type Translation struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ExternalID *string   `json:"external_id,omitempty"`
	InputText  string    `json:"input_text"`
	OutputText string    `json:"output_text"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	Cost       *int64    `json:"cost"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Translation) TableName() string { return "translations" }

// TranslateRequest is the processor input shared by the sync HTTP path
// and the queue worker. ExternalID is empty for synchronous calls.
type TranslateRequest struct {
	UserID     string
	InputText  string
	SourceLang string
	TargetLang string
	ExternalID string
}

// Normalize trims the input text and lowercases both language codes.
func (r TranslateRequest) Normalize() (TranslateRequest, error) {
	r.InputText = strings.TrimSpace(r.InputText)
	if r.InputText == "" {
		return r, ErrEmptyInput
	}
	r.SourceLang = strings.ToLower(strings.TrimSpace(r.SourceLang))
	r.TargetLang = strings.ToLower(strings.TrimSpace(r.TargetLang))
	if r.SourceLang == "" || r.TargetLang == "" {
		return r, ErrInvalidLang
	}
	return r, nil
}
