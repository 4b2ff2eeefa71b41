package backup

import (
	"context"
	"fmt"
	"github.com/labstack/gommon/log"
	"os"
	"path/filepath"
	"promptlib/cmd/internal/contract"
	"time"
)

// PromptAPI is the subset of the prompt API the utilities need.
type PromptAPI interface {
	List(ctx context.Context) ([]*contract.PromptResponse, error)
	Create(ctx context.Context, req *contract.PromptRequest) (int, error)
	Delete(ctx context.Context, id int) error
}

// Uploader stores a copy of a snapshot elsewhere, e.g. an S3 bucket.
type Uploader interface {
	UploadFile(data []byte, filename string) (string, error)
}

type Service struct {
	API PromptAPI
	// Delay is slept between consecutive mutating requests.
	Delay time.Duration
	// Uploader is optional.
	Uploader Uploader
	Now      func() time.Time
}

func NewService(api PromptAPI, delay time.Duration) *Service {
	return &Service{
		API:   api,
		Delay: delay,
		Now:   time.Now,
	}
}

type BackupResult struct {
	Path        string
	LatestPath  string
	Total       int
	RemoteKey   string
	RemoteError error
}

// Backup fetches every prompt and writes a snapshot into dir. It never
// mutates the store.
func (s *Service) Backup(ctx context.Context, dir string) (*BackupResult, error) {
	log.Infof("fetching all prompts from the API")
	prompts, err := s.API.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prompts: %w", err)
	}
	log.Infof("found %d prompts to back up", len(prompts))

	takenAt := s.Now()
	snap := contract.NewSnapshot(FormatTimestamp(takenAt), prompts)

	path, data, err := WriteSnapshot(dir, snap, takenAt)
	if err != nil {
		return nil, err
	}

	result := &BackupResult{
		Path:       path,
		LatestPath: filepath.Join(dir, LatestSnapshotName),
		Total:      snap.TotalPrompts,
	}

	if s.Uploader != nil {
		key, err := s.Uploader.UploadFile(data, filepath.Base(path))
		if err != nil {
			// The local snapshot is already safe, so a failed upload is reported, not fatal.
			log.Warnf("failed to upload snapshot %s: %v", filepath.Base(path), err)
			result.RemoteError = err
		} else {
			result.RemoteKey = key
		}
	}
	return result, nil
}

type RestoreOptions struct {
	// ClearFirst deletes every unlocked prompt before restoring.
	ClearFirst bool
	// SkipExisting skips snapshot prompts whose title is already present.
	SkipExisting bool
}

// Restore reads the snapshot at path and reapplies it.
func (s *Service) Restore(ctx context.Context, path string, opts RestoreOptions) (*contract.RestoreSummary, error) {
	snap, err := ReadSnapshot(path)
	if err != nil {
		return nil, err
	}

	log.Infof("backup contains %d prompts (taken %s)", len(snap.Prompts), snap.Timestamp)
	if snap.TotalPrompts != len(snap.Prompts) {
		log.Warnf("backup declares %d prompts but holds %d", snap.TotalPrompts, len(snap.Prompts))
	}
	return s.RestoreSnapshot(ctx, snap, opts)
}

// RestoreSnapshot applies snap to the live store. Listing failures abort the
// run; single prompt failures are counted and the run continues.
func (s *Service) RestoreSnapshot(ctx context.Context, snap *contract.Snapshot, opts RestoreOptions) (*contract.RestoreSummary, error) {
	if opts.ClearFirst {
		if err := s.clearUnlocked(ctx); err != nil {
			return nil, err
		}
	}

	existing := map[string]struct{}{}
	if opts.SkipExisting {
		prompts, err := s.API.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch existing prompts: %w", err)
		}
		for _, p := range prompts {
			existing[p.Title] = struct{}{}
		}
		log.Infof("found %d existing titles", len(existing))
	}

	summary := &contract.RestoreSummary{}
	for i, prompt := range snap.Prompts {
		if opts.SkipExisting {
			if _, ok := existing[prompt.Title]; ok {
				log.Infof("skipping existing prompt: %s", prompt.Title)
				summary.Skipped++
				continue
			}
		}

		if i > 0 {
			if err := s.pause(ctx); err != nil {
				return nil, err
			}
		}

		id, err := s.API.Create(ctx, prompt.ToRequest())
		if err != nil {
			log.Errorf("failed to restore %q: %v", prompt.Title, err)
			summary.Failed++
			continue
		}

		log.Infof("restored %q as #%d", prompt.Title, id)
		summary.Restored++
	}

	log.Infof("restore summary: restored=%d skipped=%d failed=%d",
		summary.Restored, summary.Skipped, summary.Failed)
	return summary, nil
}

// clearUnlocked deletes every unlocked prompt. Locked prompts survive.
func (s *Service) clearUnlocked(ctx context.Context) error {
	log.Infof("clearing existing unlocked prompts")
	prompts, err := s.API.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch prompts to clear: %w", err)
	}

	cleared := 0
	for _, p := range prompts {
		if p.Locked {
			continue
		}

		if cleared > 0 {
			if err := s.pause(ctx); err != nil {
				return err
			}
		}

		if err := s.API.Delete(ctx, p.ID); err != nil {
			log.Warnf("failed to clear prompt #%d %q: %v", p.ID, p.Title, err)
			continue
		}
		cleared++
	}

	log.Infof("cleared %d unlocked prompts", cleared)
	return nil
}

// Import creates every prompt found in the JSON document at path (an export
// array or a snapshot envelope).
func (s *Service) Import(ctx context.Context, path string) (*contract.ImportSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	prompts, err := contract.ParsePromptDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse import file %s: %w", path, err)
	}
	log.Infof("found %d prompts to import", len(prompts))

	summary := &contract.ImportSummary{}
	for i, prompt := range prompts {
		if i > 0 {
			if err := s.pause(ctx); err != nil {
				return nil, err
			}
		}

		if _, err := s.API.Create(ctx, prompt.ToRequest()); err != nil {
			log.Errorf("failed to import %q: %v", prompt.Title, err)
			summary.Failed++
			continue
		}

		log.Infof("imported %q (%d/%d)", prompt.Title, i+1, len(prompts))
		summary.Imported++
	}
	return summary, nil
}

func (s *Service) pause(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
