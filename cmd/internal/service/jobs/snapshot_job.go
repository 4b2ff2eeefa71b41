package jobs

import (
	"context"
	"github.com/labstack/gommon/log"
	"promptlib/cmd/internal/contract"
	"promptlib/cmd/internal/domain/entity"
	"promptlib/cmd/internal/observability"
	"promptlib/cmd/internal/service"
	"promptlib/cmd/internal/service/backup"
	"time"
)

type PromptRepository interface {
	FindAll() ([]*entity.Prompt, error)
}

// SnapshotJob periodically writes a snapshot of the store straight from the
// database, using the same envelope and file names as the backup utility.
type SnapshotJob struct {
	promptRepo PromptRepository
	dir        string
	interval   time.Duration
	metrics    *observability.PromptMetrics
	now        func() time.Time
}

func NewSnapshotJob(repo PromptRepository, dir string, interval time.Duration, metrics *observability.PromptMetrics) *SnapshotJob {
	return &SnapshotJob{
		promptRepo: repo,
		dir:        dir,
		interval:   interval,
		metrics:    metrics,
		now:        time.Now,
	}
}

func (j *SnapshotJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Infof("Snapshot job started (every %s into %s)", j.interval, j.dir)

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping snapshot job...")
			return
		case <-ticker.C:
			if _, err := j.run(); err != nil {
				log.Errorf("Snapshot job: %v", err)
			}
		}
	}
}

func (j *SnapshotJob) run() (string, error) {
	prompts, err := j.promptRepo.FindAll()
	if err != nil {
		return "", err
	}

	takenAt := j.now()
	snap := contract.NewSnapshot(backup.FormatTimestamp(takenAt), service.ToPromptResponses(prompts))

	path, _, err := backup.WriteSnapshot(j.dir, snap, takenAt)
	if err != nil {
		return "", err
	}

	j.metrics.IncSnapshots()
	log.Debugf("Snapshot job: wrote %d prompts to %s", snap.TotalPrompts, path)
	return path, nil
}
