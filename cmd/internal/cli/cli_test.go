package cli

import (
	"bytes"
	"context"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"net/http/httptest"
	"os"
	"path/filepath"
	"promptlib/cmd/internal/contract"
	"promptlib/cmd/internal/domain/policy"
	"promptlib/cmd/internal/domain/seed"
	"promptlib/cmd/internal/domain/sqlite"
	"promptlib/cmd/internal/domain/sqlite/repository"
	"promptlib/cmd/internal/http/server"
	"promptlib/cmd/internal/infrastructure/promptapi"
	"promptlib/cmd/internal/service"
	"promptlib/cmd/internal/service/backup"
	"promptlib/cmd/internal/utils/validators"
	"testing"
	"time"
)

type cliEnv struct {
	apiBase string
	dbPath  string
	db      *gorm.DB
	client  *promptapi.Client
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cli.sqlite")
	db, err := sqlite.Init(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	validate := validator.New()
	validators.Register(validate)
	svc := service.NewPromptService(repository.NewPromptRepository(db), policy.NewPromptPolicy(), validate, nil)

	srv := httptest.NewServer(server.New(server.Options{PromptService: svc}))
	t.Cleanup(srv.Close)

	apiBase := srv.URL + "/api"
	return &cliEnv{
		apiBase: apiBase,
		dbPath:  dbPath,
		db:      db,
		client:  promptapi.NewClient(apiBase, 5*time.Second),
	}
}

func (env *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := RootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api-base", env.apiBase, "--delay", "0s", "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (env *cliEnv) create(t *testing.T, title string, locked bool) {
	t.Helper()
	_, err := env.client.Create(context.Background(), &contract.PromptRequest{
		Title: title, Body: "body " + title, Tags: "cli", Locked: contract.Flag(locked),
	})
	require.NoError(t, err)
}

func (env *cliEnv) count(t *testing.T) int {
	t.Helper()
	prompts, err := env.client.List(context.Background())
	require.NoError(t, err)
	return len(prompts)
}

func TestBackupThenRestore(t *testing.T) {
	env := newCLIEnv(t)
	env.create(t, "A", true)
	env.create(t, "B", false)

	dir := t.TempDir()
	out, err := env.run(t, "backup", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up 2 prompts")
	assert.FileExists(t, filepath.Join(dir, backup.LatestSnapshotName))

	out, err = env.run(t, "restore", filepath.Join(dir, backup.LatestSnapshotName), "--clear-first", "--skip-existing")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored: 1")
	assert.Contains(t, out, "Skipped:  1")
	assert.Equal(t, 2, env.count(t))
}

func TestRestore_MissingFileFails(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "restore", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"A","body":"a","tags":"","locked":0}]`), 0o644))

	out, err := env.run(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported: 1")
	assert.Equal(t, 1, env.count(t))
}

func TestImport_PositionalAPIBase(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"A","body":"a"}]`), 0o644))

	cmd := RootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--delay", "0s", "--log-level", "error", "import", path, env.apiBase})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, 1, env.count(t))
}

func TestExport_SQL(t *testing.T) {
	env := newCLIEnv(t)
	env.create(t, "A", false)

	output := filepath.Join(t.TempDir(), "dump.sql")
	out, err := env.run(t, "--db", env.dbPath, "export", "sql", output)
	require.NoError(t, err)
	assert.Contains(t, out, output)

	dump, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(dump), "INSERT INTO")
}

func TestExport_UnknownFormat(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "export", "xml")
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	env := newCLIEnv(t)
	catalog, err := seed.Catalog()
	require.NoError(t, err)

	_, err = env.run(t, "seed")
	require.NoError(t, err)
	assert.Equal(t, len(catalog), env.count(t))

	out, err := env.run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Added:   0")
	assert.Equal(t, len(catalog), env.count(t))
}

func TestUnreachableAPI(t *testing.T) {
	cmd := RootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--api-base", "http://127.0.0.1:1/api", "--timeout", "200ms", "--log-level", "off", "backup", "--dir", t.TempDir()})

	err := cmd.Execute()
	assert.ErrorIs(t, err, promptapi.ErrNetwork)
}
