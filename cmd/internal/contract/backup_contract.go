package contract

import (
	"bytes"
	"encoding/json"
	"errors"
)

// SnapshotVersion is written to every snapshot envelope.
const SnapshotVersion = "1.0"

// Snapshot is the on-disk backup envelope.
type Snapshot struct {
	Timestamp    string            `json:"timestamp"`
	Version      string            `json:"version"`
	TotalPrompts int               `json:"totalPrompts"`
	Prompts      []*PromptResponse `json:"prompts"`
}

// NewSnapshot wraps prompts in an envelope stamped with timestamp.
func NewSnapshot(timestamp string, prompts []*PromptResponse) *Snapshot {
	if prompts == nil {
		prompts = []*PromptResponse{}
	}
	return &Snapshot{
		Timestamp:    timestamp,
		Version:      SnapshotVersion,
		TotalPrompts: len(prompts),
		Prompts:      prompts,
	}
}

// ToRequest drops the id so the destination store assigns a fresh one.
func (p *PromptResponse) ToRequest() *PromptRequest {
	return &PromptRequest{
		Title:  p.Title,
		Body:   p.Body,
		Tags:   p.Tags,
		Locked: p.Locked,
	}
}

// RestoreSummary reports the outcome of a restore run. Restored, Skipped and
// Failed always add up to the number of prompts in the snapshot.
type RestoreSummary struct {
	Restored int `json:"restored"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

func (s *RestoreSummary) Total() int {
	return s.Restored + s.Skipped + s.Failed
}

type ImportSummary struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

var ErrEmptyDocument = errors.New("document is empty")

// ParsePromptDocument accepts either a bare array of prompts (export format)
// or a full snapshot envelope.
func ParsePromptDocument(data []byte) ([]*PromptResponse, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	if data[0] == '[' {
		var prompts []*PromptResponse
		if err := json.Unmarshal(data, &prompts); err != nil {
			return nil, err
		}
		return prompts, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return snap.Prompts, nil
}
