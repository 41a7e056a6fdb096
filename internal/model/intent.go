package model

import (
	"time"

	"github.com/google/uuid"
)

// DownloadForm is what the purchaser fills in the download modal.
type DownloadForm struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// DownloadIntent lives in memory only, one at a time.
type DownloadIntent struct {
	ID         string       `json:"id"`
	ResourceID ResourceID   `json:"resource_id"`
	Form       DownloadForm `json:"form"`
	CreatedAt  time.Time    `json:"created_at"`
}

func NewDownloadIntent(resourceID ResourceID, prefill DownloadForm) *DownloadIntent {
	return &DownloadIntent{
		ID:         uuid.NewString(),
		ResourceID: resourceID,
		Form:       prefill,
		CreatedAt:  time.Now(),
	}
}
