package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aiguild/guildtracker/internal/config"
	"github.com/aiguild/guildtracker/internal/models"
	"github.com/aiguild/guildtracker/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Mirror outcome strings surfaced in write responses.
const (
	MirrorDisabled = "disabled"
	MirrorOK       = "ok"
	MirrorQueued   = "queued"
)

const mirrorFailurePrefix = "local save succeeded but the mirror sync failed: "

// OutboxService records spreadsheet writes as mirror_ops rows after the
// local store has committed, attempts delivery through the task queue,
// and sweeps pending entries on a schedule. The mirror never blocks or
// rolls back a local write.
type OutboxService struct {
	db      *gorm.DB
	mirror  RowMirror
	queue   TaskQueue
	cfg     config.OutboxConfig
	enabled bool
	sweeper *cron.Cron
}

func NewOutboxService(db *gorm.DB, mirror RowMirror, queue TaskQueue, cfg *config.Config) *OutboxService {
	outboxCfg := cfg.Outbox
	if outboxCfg.SweepInterval == "" {
		outboxCfg.SweepInterval = "2m"
	}
	if outboxCfg.MaxRetries <= 0 {
		outboxCfg.MaxRetries = 3
	}
	if outboxCfg.BatchSize <= 0 {
		outboxCfg.BatchSize = 10
	}

	return &OutboxService{
		db:      db,
		mirror:  mirror,
		queue:   queue,
		cfg:     outboxCfg,
		enabled: cfg.Sheets.Enabled && mirror != nil,
	}
}

// Enabled reports whether mirror ops are being recorded at all.
func (s *OutboxService) Enabled() bool {
	return s.enabled
}

// Submit records a mirror op for an already-committed local write and
// attempts first delivery. The returned string is the user-facing
// mirror outcome; it never affects the local result. The project
// snapshot must be taken before a delete so clear ops still know the
// name.
func (s *OutboxService) Submit(op string, project *models.Project) string {
	if !s.enabled {
		return MirrorDisabled
	}

	var payload string
	if op != models.MirrorOpClear {
		marker := MarkerNewEntry
		if op == models.MirrorOpReplace {
			marker = MarkerUpdated
		}
		b, err := json.Marshal(MirrorRow(project, marker))
		if err != nil {
			logger.Error().Err(err).Str("project", project.Name).Msg("mirror row encode failed")
			return mirrorFailurePrefix + err.Error()
		}
		payload = string(b)
	}

	rec := models.MirrorOp{
		Op:          op,
		ProjectName: project.Name,
		Payload:     payload,
		Status:      models.MirrorOpPending,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		logger.Error().Err(err).Str("project", project.Name).Msg("mirror op not recorded")
		return mirrorFailurePrefix + err.Error()
	}

	if op != models.MirrorOpClear {
		s.setSyncStatus(project.Name, models.SyncPending)
	}

	if err := s.queue.Enqueue(&MirrorTask{OpID: rec.ID}); err != nil {
		// Async enqueue failure or inline delivery failure; the sweep
		// retries either way.
		return mirrorFailurePrefix + err.Error()
	}

	if s.queue.IsAsync() {
		return MirrorQueued
	}
	return MirrorOK
}

// DeliverByID loads an outbox entry and attempts delivery. Registered
// as the task queue processor for both sync and async modes.
func (s *OutboxService) DeliverByID(ctx context.Context, task *MirrorTask) error {
	var op models.MirrorOp
	if err := s.db.First(&op, task.OpID).Error; err != nil {
		return err
	}
	return s.deliver(ctx, &op)
}

// deliver makes one attempt at an op and records the outcome on the op
// and the project's sync_status.
func (s *OutboxService) deliver(ctx context.Context, op *models.MirrorOp) error {
	op.Attempts++
	err := s.attempt(ctx, op)

	switch {
	case err == nil:
		op.Status = models.MirrorOpDone
		op.LastError = ""
		s.setSyncStatus(op.ProjectName, models.SyncSynced)

	case errors.Is(err, models.ErrRowNotFound):
		if op.Op == models.MirrorOpClear {
			// The row is already gone, which is what clear wanted.
			op.Status = models.MirrorOpDone
			op.LastError = ""
			err = nil
		} else {
			// Retrying a replace cannot conjure the missing row.
			op.Status = models.MirrorOpFailed
			op.LastError = err.Error()
			s.setSyncStatus(op.ProjectName, models.SyncFailed)
		}

	default:
		op.LastError = err.Error()
		if op.Attempts >= s.cfg.MaxRetries {
			op.Status = models.MirrorOpFailed
			s.setSyncStatus(op.ProjectName, models.SyncFailed)
			logger.Error().
				Str("op", op.Op).
				Str("project", op.ProjectName).
				Int("attempts", op.Attempts).
				Str("error", op.LastError).
				Msg("mirror op gave up")
		}
	}

	if saveErr := s.db.Save(op).Error; saveErr != nil {
		logger.Error().Err(saveErr).Uint("op_id", op.ID).Msg("mirror op state not saved")
	}
	return err
}

// attempt performs the spreadsheet call for one op.
func (s *OutboxService) attempt(ctx context.Context, op *models.MirrorOp) error {
	switch op.Op {
	case models.MirrorOpAppend, models.MirrorOpReplace:
		var values []interface{}
		if err := json.Unmarshal([]byte(op.Payload), &values); err != nil {
			return err
		}
		if op.Op == models.MirrorOpAppend {
			return s.mirror.Append(ctx, values)
		}
		return s.mirror.Replace(ctx, op.ProjectName, values)
	case models.MirrorOpClear:
		return s.mirror.Clear(ctx, op.ProjectName)
	default:
		return errors.New("unknown mirror op: " + op.Op)
	}
}

func (s *OutboxService) setSyncStatus(name, status string) {
	// Affects zero rows once the project is deleted, which is fine.
	if err := s.db.Model(&models.Project{}).
		Where("name = ?", name).
		Update("sync_status", status).Error; err != nil {
		logger.Error().Err(err).Str("project", name).Msg("sync status not updated")
	}
}

// ProcessPending retries pending ops oldest-first in one batch. Runs on
// the sweep schedule and can be called directly.
func (s *OutboxService) ProcessPending() {
	var ops []models.MirrorOp
	err := s.db.Where("status = ?", models.MirrorOpPending).
		Order("created_at ASC").
		Limit(s.cfg.BatchSize).
		Find(&ops).Error
	if err != nil {
		logger.Error().Err(err).Msg("outbox sweep query failed")
		return
	}
	if len(ops) == 0 {
		return
	}

	logger.Infof("[Outbox] Retrying %d pending mirror ops", len(ops))
	for i := range ops {
		if err := s.deliver(context.Background(), &ops[i]); err != nil {
			logger.Warn().
				Err(err).
				Str("project", ops[i].ProjectName).
				Str("op", ops[i].Op).
				Msg("mirror retry failed")
		}
	}
}

// PendingCount returns the number of undelivered mirror ops.
func (s *OutboxService) PendingCount() int64 {
	var count int64
	s.db.Model(&models.MirrorOp{}).Where("status = ?", models.MirrorOpPending).Count(&count)
	return count
}

// StartSweep schedules the pending-op retry loop.
func (s *OutboxService) StartSweep() {
	if !s.enabled {
		return
	}

	s.sweeper = cron.New()
	spec := "@every " + s.cfg.SweepInterval
	if _, err := s.sweeper.AddFunc(spec, s.ProcessPending); err != nil {
		logger.Error().Err(err).Str("spec", spec).Msg("outbox sweep not scheduled")
		return
	}
	s.sweeper.Start()
	logger.Infof("[Outbox] Sweep scheduled (%s, max retries %d)", spec, s.cfg.MaxRetries)
}

// StopSweep stops the retry loop.
func (s *OutboxService) StopSweep() {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
}
