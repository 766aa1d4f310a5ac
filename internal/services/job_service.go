package services

import (
	"context"
	"time"

	"github.com/sjperalta/smartdebt-api/internal/jobs"
	"github.com/sjperalta/smartdebt-api/pkg/logger"
)

// JobService exposes worker status and owns the recurring jobs
type JobService struct {
	worker *jobs.Worker
}

func NewJobService(worker *jobs.Worker) *JobService {
	return &JobService{
		worker: worker,
	}
}

func (s *JobService) GetStatus() jobs.WorkerStats {
	return s.worker.GetStats()
}

// QueueBackupEmail checks the mailer synchronously and sends the backup in the background
func (s *JobService) QueueBackupEmail(email *EmailService, to []string) error {
	to, err := email.Recipients(to)
	if err != nil {
		return err
	}
	s.worker.EnqueueAsync("backup_email", func(ctx context.Context) error {
		return email.SendBackup(ctx, to)
	})
	return nil
}

// ScheduleBackupEmail mails a backup every interval. Zero interval or a disabled mailer is a no-op.
func (s *JobService) ScheduleBackupEmail(interval time.Duration, email *EmailService) bool {
	if interval <= 0 || email == nil || !email.Enabled() {
		return false
	}
	s.worker.ScheduleEvery("backup_email", interval, func(ctx context.Context) error {
		return email.SendBackup(ctx, nil)
	})
	logger.Info("Backup email scheduled", "interval", interval)
	return true
}
