package model

// TranslationTask is the queue payload for asynchronous translation.
// TaskID doubles as the caller-visible correlation id and the external
// id of the resulting history record.
type TranslationTask struct {
	TaskID     string `json:"task_id"`
	UserID     string `json:"user_id"`
	InputText  string `json:"input_text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// TaskStatus is derived, not stored: a task is done once its history
// record exists, pending otherwise.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
)
