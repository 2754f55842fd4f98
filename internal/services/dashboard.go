package services

import (
	"github.com/aiguild/guildtracker/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// DashboardStats summarizes the registry for the overview page.
type DashboardStats struct {
	Total     int64            `json:"total"`
	ByStatus  map[string]int64 `json:"by_status"`
	OutOfSync int64            `json:"out_of_sync"`
}

type statusCount struct {
	Status string
	Count  int64
}

// GetStats returns the total project count, a count per lifecycle
// stage (zero-filled for stages with no projects), and how many
// records are not confirmed on the mirror.
func (s *DashboardService) GetStats() (*DashboardStats, error) {
	stats := &DashboardStats{
		ByStatus: map[string]int64{
			models.StatusIdea:   0,
			models.StatusMVP:    0,
			models.StatusLaunch: 0,
		},
	}

	if err := s.db.Model(&models.Project{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	var rows []statusCount
	if err := s.db.Model(&models.Project{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
	}

	if err := s.db.Model(&models.Project{}).
		Where("sync_status <> ?", models.SyncSynced).
		Count(&stats.OutOfSync).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
