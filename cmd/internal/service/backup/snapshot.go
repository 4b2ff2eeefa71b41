// Package backup implements the snapshot, export, import and restore
// utilities that run against a live prompt API.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"promptlib/cmd/internal/contract"
	"promptlib/cmd/internal/utils"
	"strings"
	"time"
)

const (
	LatestSnapshotName = "prompts-backup-latest.json"
	snapshotPrefix     = "prompts-backup-"
)

// FormatTimestamp renders the snapshot timestamp for t.
func FormatTimestamp(t time.Time) string {
	return utils.FormatInstant(t)
}

// SnapshotFileName returns the timestamped file name for a snapshot taken at t.
// Characters that are awkward in file names (':' and '.') become '-'.
func SnapshotFileName(t time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(FormatTimestamp(t))
	return snapshotPrefix + stamp + ".json"
}

// WriteSnapshot writes snap to dir twice: once under its timestamped name and
// once over the fixed "latest" name. dir is created when missing.
func WriteSnapshot(dir string, snap *contract.Snapshot, takenAt time.Time) (string, []byte, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := MarshalSnapshot(snap)
	if err != nil {
		return "", nil, err
	}

	path := filepath.Join(dir, SnapshotFileName(takenAt))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	latest := filepath.Join(dir, LatestSnapshotName)
	if err := os.WriteFile(latest, data, 0o644); err != nil {
		return "", nil, fmt.Errorf("failed to write latest snapshot: %w", err)
	}
	return path, data, nil
}

func MarshalSnapshot(snap *contract.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// ReadSnapshot loads a snapshot envelope from path. A bare prompt array is
// accepted too and wrapped in an envelope.
func ReadSnapshot(path string) (*contract.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	var snap contract.Snapshot
	if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("failed to parse backup file %s: %w", path, err)
		}
		if snap.Prompts == nil {
			snap.Prompts = []*contract.PromptResponse{}
		}
		return &snap, nil
	}

	prompts, err := contract.ParsePromptDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse backup file %s: %w", path, err)
	}
	return contract.NewSnapshot("", prompts), nil
}
