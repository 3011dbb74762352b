// internal/models/audit.go
package models

import "time"

type AuditLog struct {
	BaseModel
	Caller       string `json:"caller" gorm:"size:42;index"`
	Action       string `json:"action" gorm:"size:100;not null;index"`
	ResourceType string `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   string `json:"resource_id" gorm:"size:128;index"`
	Status       int    `json:"status"`
	NewValues    JSONB  `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string `json:"ip_address" gorm:"size:45"`
	UserAgent    string `json:"user_agent" gorm:"type:text"`
}

// EventArchive records each event object written to the archive.
type EventArchive struct {
	BaseModel
	ObjectKey  string      `json:"object_key" gorm:"size:512;not null;uniqueIndex"`
	EventCount int         `json:"event_count" gorm:"not null"`
	FirstAt    time.Time   `json:"first_at"`
	LastAt     time.Time   `json:"last_at"`
	Status     EventStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Error      string      `json:"error,omitempty" gorm:"type:text"`
}
