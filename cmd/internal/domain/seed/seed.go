// Package seed holds the built-in prompt catalog and the first-run seeder.
package seed

import (
	_ "embed"
	"fmt"
	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"
	"promptlib/cmd/internal/domain/entity"
	"strings"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Entry is one catalog prompt.
type Entry struct {
	Title  string `yaml:"title"`
	Body   string `yaml:"body"`
	Tags   string `yaml:"tags"`
	Locked bool   `yaml:"locked"`
}

func (e *Entry) ToEntity() *entity.Prompt {
	return &entity.Prompt{
		Title:  e.Title,
		Body:   e.Body,
		Tags:   e.Tags,
		Locked: e.Locked,
	}
}

// Catalog parses the embedded catalog.
func Catalog() ([]*Entry, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes a YAML list of entries, rejecting entries without a
// title or body.
func ParseCatalog(data []byte) ([]*Entry, error) {
	var entries []*Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}

	for i, e := range entries {
		if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Body) == "" {
			return nil, fmt.Errorf("seed catalog entry %d is missing a title or body", i)
		}
	}
	return entries, nil
}

type Repository interface {
	Count() (int64, error)
	CreateBatch(prompts []*entity.Prompt) error
}

type Seeder struct {
	repo    Repository
	entries []*Entry
}

func NewSeeder(repo Repository, entries []*Entry) *Seeder {
	return &Seeder{repo: repo, entries: entries}
}

// Run inserts the catalog only when the store is empty. It returns the
// number of prompts inserted.
func (s *Seeder) Run() (int, error) {
	count, err := s.repo.Count()
	if err != nil {
		return 0, fmt.Errorf("failed to count prompts: %w", err)
	}

	if count > 0 {
		log.Debugf("store already holds %d prompts, skipping seed", count)
		return 0, nil
	}

	prompts := make([]*entity.Prompt, len(s.entries))
	for i, e := range s.entries {
		prompts[i] = e.ToEntity()
	}

	if err := s.repo.CreateBatch(prompts); err != nil {
		return 0, fmt.Errorf("failed to insert seed prompts: %w", err)
	}

	log.Infof("seeded %d prompts", len(prompts))
	return len(prompts), nil
}
