package model

import "time"

// StorageEntry backs the client-local key/value store.
type StorageEntry struct {
	Key       string `gorm:"column:storage_key;primaryKey;size:128;not null"`
	Value     string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TransactionKind string

const (
	TransactionTest     TransactionKind = "TEST"
	TransactionExternal TransactionKind = "EXTERNAL"
)

// PaymentTransaction is the local ledger entry of an initiated payment.
// It never authorizes a download; the backend checks the tracking id.
type PaymentTransaction struct {
	OrderTrackingID string          `gorm:"primaryKey;size:128;not null" json:"order_tracking_id"`
	IntentID        string          `gorm:"size:64;index" json:"intent_id"`
	ResourceID      string          `gorm:"size:64;index;not null" json:"resource_id"`
	Email           string          `gorm:"size:255;index;not null" json:"email"`
	Kind            TransactionKind `gorm:"size:16;not null" json:"kind"`
	PaymentURL      string          `gorm:"type:text" json:"payment_url,omitempty"`
	DownloadLink    string          `gorm:"type:text;not null" json:"download_link"`
	FollowedAt      *time.Time      `json:"followed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CachedResource is the last known home listing, seeded with the sample catalogue.
type CachedResource struct {
	ID           string       `gorm:"primaryKey;size:64;not null"`
	ResourceType ResourceType `gorm:"size:16;index;not null"`
	ClassGrade   string       `gorm:"size:32"`
	Subject      string       `gorm:"size:128"`
	Title        string       `gorm:"size:255;not null"`
	Description  string       `gorm:"type:text"`
	Cover        string       `gorm:"type:text"`
	Position     int          `gorm:"not null"`
	UpdatedAt    time.Time
}

func (c CachedResource) ToResource() Resource {
	r := Resource{
		ID:           ResourceID(c.ID),
		ResourceType: c.ResourceType,
		ClassGrade:   c.ClassGrade,
		Subject:      c.Subject,
		Title:        c.Title,
		Description:  c.Description,
	}
	if c.Cover != "" {
		cover := c.Cover
		r.Cover = &cover
	}
	return r
}

func CachedFromResource(r Resource, position int) CachedResource {
	return CachedResource{
		ID:           r.ID.String(),
		ResourceType: r.ResourceType,
		ClassGrade:   r.rawGrade(),
		Subject:      r.Subject,
		Title:        r.Title,
		Description:  r.Description,
		Cover:        r.CoverPath(),
		Position:     position,
	}
}
