package models

import "time"

// Mirror operation kinds.
const (
	MirrorOpAppend  = "append"
	MirrorOpReplace = "replace"
	MirrorOpClear   = "clear"
)

// Mirror operation states.
const (
	MirrorOpPending = "pending"
	MirrorOpDone    = "done"
	MirrorOpFailed  = "failed"
)

// MirrorOp is an outbox entry for a spreadsheet write. Local store
// writes commit first; the op records what still has to reach the
// mirror and how delivery is going.
type MirrorOp struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Op          string    `gorm:"size:20;not null" json:"op"` // append, replace, clear
	ProjectName string    `gorm:"size:200;not null;index" json:"project_name"`
	Payload     string    `gorm:"type:text" json:"payload"` // JSON row values; empty for clear
	Attempts    int       `gorm:"default:0" json:"attempts"`
	LastError   string    `gorm:"type:text" json:"last_error"`
	Status      string    `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (MirrorOp) TableName() string { return "mirror_ops" }
