package sqlite

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"path/filepath"
	"promptlib/cmd/internal/domain/entity"
	"strings"
	"testing"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Init(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestInit_CreatesPromptsTable(t *testing.T) {
	db := openTestDB(t)
	assert.True(t, db.Migrator().HasTable("prompts"))
	for _, col := range []string{"id", "title", "body", "tags", "locked"} {
		assert.True(t, db.Migrator().HasColumn(&entity.Prompt{}, col), col)
	}
}

func TestDump_ContainsSchemaAndRows(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&entity.Prompt{Title: "It's", Body: "line1\nline2", Tags: "a,b", Locked: true}).Error)

	var buf bytes.Buffer
	require.NoError(t, Dump(db, &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "PRAGMA foreign_keys=OFF;\nBEGIN TRANSACTION;\n"))
	assert.Contains(t, out, "CREATE TABLE `prompts`")
	assert.Contains(t, out, `INSERT INTO "prompts" VALUES(1,'It''s','line1`)
	assert.Contains(t, out, "INSERT INTO sqlite_sequence VALUES('prompts',1);")
	assert.True(t, strings.HasSuffix(out, "COMMIT;\n"))
}

func TestDump_ReplaysIntoFreshDatabase(t *testing.T) {
	src := openTestDB(t)
	require.NoError(t, src.Create(&entity.Prompt{Title: "A", Body: "B", Tags: "x"}).Error)
	require.NoError(t, src.Create(&entity.Prompt{Title: "C", Body: "D", Locked: true}).Error)

	var buf bytes.Buffer
	require.NoError(t, Dump(src, &buf))

	dst, err := gorm.Open(openDialector(filepath.Join(t.TempDir(), "replay.sqlite")), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(dst) })
	sqlDB, err := dst.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range strings.Split(buf.String(), ";\n") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		require.NoError(t, dst.Exec(stmt).Error, stmt)
	}

	var prompts []*entity.Prompt
	require.NoError(t, dst.Order("id").Find(&prompts).Error)
	require.Len(t, prompts, 2)
	assert.Equal(t, "A", prompts[0].Title)
	assert.True(t, prompts[1].Locked)
}

func TestCopyTo(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&entity.Prompt{Title: "A", Body: "B"}).Error)

	target := filepath.Join(t.TempDir(), "copy.sqlite")
	require.NoError(t, CopyTo(db, target))
	// A second copy replaces the first one.
	require.NoError(t, CopyTo(db, target))

	copied, err := Init(target)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(copied) })

	var count int64
	require.NoError(t, copied.Model(&entity.Prompt{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSQLLiteral(t *testing.T) {
	assert.Equal(t, "NULL", sqlLiteral(nil))
	assert.Equal(t, "42", sqlLiteral(int64(42)))
	assert.Equal(t, "1.5", sqlLiteral(1.5))
	assert.Equal(t, "'a''b'", sqlLiteral("a'b"))
	assert.Equal(t, "X'0aff'", sqlLiteral([]byte{0x0a, 0xff}))
	assert.Equal(t, "1", sqlLiteral(true))
}
