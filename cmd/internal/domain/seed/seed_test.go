package seed

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"promptlib/cmd/internal/domain/sqlite"
	"promptlib/cmd/internal/domain/sqlite/repository"
	"testing"
)

func TestCatalog_Embedded(t *testing.T) {
	entries, err := Catalog()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	titles := make(map[string]bool, len(entries))
	for _, e := range entries {
		assert.NotEmpty(t, e.Title)
		assert.NotEmpty(t, e.Body)
		assert.False(t, titles[e.Title], "duplicate title %q", e.Title)
		titles[e.Title] = true
	}

	assert.True(t, titles["Create a Unit Test"])
}

func TestCatalog_KeepsMultilineBodies(t *testing.T) {
	entries, err := Catalog()
	require.NoError(t, err)

	for _, e := range entries {
		if e.Title == "Jira Bug Report Template" {
			assert.Contains(t, e.Body, "\nSteps to Reproduce:\n")
			assert.True(t, e.Locked)
			return
		}
	}
	t.Fatal("Jira Bug Report Template not found")
}

func TestParseCatalog_RejectsIncompleteEntries(t *testing.T) {
	_, err := ParseCatalog([]byte("- title: only a title\n"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("not: [a list"))
	assert.Error(t, err)
}

func TestSeeder_RunsOnlyOnEmptyStore(t *testing.T) {
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "seed.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })
	repo := repository.NewPromptRepository(db)

	entries := []*Entry{
		{Title: "A", Body: "a", Tags: "x", Locked: true},
		{Title: "B", Body: "b"},
	}
	seeder := NewSeeder(repo, entries)

	n, err := seeder.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = seeder.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	all, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Title)
	assert.True(t, all[0].Locked)
	assert.False(t, all[1].Locked)
}
