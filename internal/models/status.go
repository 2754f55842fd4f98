package models

// Project lifecycle stages.
const (
	StatusIdea   = "Idea"
	StatusMVP    = "MVP"
	StatusLaunch = "Launch"
)

// Sync states for the spreadsheet mirror, tracked per project.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncFailed  = "failed"
)

// StatusInfo describes a lifecycle stage for display purposes.
type StatusInfo struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// StatusCatalog returns display metadata for every valid status, in
// lifecycle order.
func StatusCatalog() []StatusInfo {
	return []StatusInfo{
		{Name: StatusIdea, Color: "#FFA500", Description: "Early concept stage"},
		{Name: StatusMVP, Color: "#4169E1", Description: "Working prototype available"},
		{Name: StatusLaunch, Color: "#32CD32", Description: "Publicly launched product"},
	}
}

// IsValidStatus reports whether s is one of the enumerated stages.
func IsValidStatus(s string) bool {
	return s == StatusIdea || s == StatusMVP || s == StatusLaunch
}
