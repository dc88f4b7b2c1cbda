package tasks

import "time"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

type Task struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index"      json:"userId"`
	InputText string    `json:"inputText"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Result    *string   `json:"result,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateTaskDTO struct {
	InputText string `json:"inputText" validate:"required"`
}

// UpdateResultDTO carries a worker's final output. Status and progress
// default to completed/100 when omitted.
type UpdateResultDTO struct {
	Result   string  `json:"result"`
	Status   *string `json:"status"`
	Progress *int    `json:"progress" validate:"omitempty,min=0,max=100"`
}

type UpdateProgressDTO struct {
	Progress int `json:"progress" validate:"min=0,max=100"`
}
