package models

import "time"

// Project is a registered AI project. Name is the natural key: unique,
// required, and immutable after creation. Rows are hard-deleted so a
// removed name can be registered again.
type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:200;not null" json:"name"`
	OneLiner    string    `gorm:"size:250;not null" json:"one_liner"`
	Description string    `gorm:"type:text;not null" json:"description"`
	AIUsage     string    `gorm:"column:ai_usage;type:text;not null" json:"ai_usage"`
	LeadName    string    `gorm:"size:200;not null" json:"lead_name"`
	Contact     string    `gorm:"size:20;not null" json:"contact"` // WhatsApp number, +<country><10 digits>
	Status      string    `gorm:"size:20;not null" json:"status"`  // Idea, MVP, Launch
	SyncStatus  string    `gorm:"size:20;not null;default:synced" json:"sync_status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
