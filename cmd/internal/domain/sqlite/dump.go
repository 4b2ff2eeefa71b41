package sqlite

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
)

type sequenceRow struct {
	Name string
	Seq  int64
}

type schemaObject struct {
	Type string
	Name string
	SQL  string
}

// Dump writes a textual SQL dump of every user table (schema followed by
// INSERT statements) wrapped in a single transaction.
func Dump(db *gorm.DB, w io.Writer) error {
	var objects []schemaObject
	err := db.Raw(`SELECT type, name, sql FROM sqlite_master
		WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%'
		ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, name`).
		Scan(&objects).Error
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "PRAGMA foreign_keys=OFF;")
	fmt.Fprintln(bw, "BEGIN TRANSACTION;")

	var indexes []schemaObject
	for _, obj := range objects {
		if obj.Type != "table" {
			indexes = append(indexes, obj)
			continue
		}

		fmt.Fprintf(bw, "%s;\n", obj.SQL)
		if err := dumpRows(db, bw, obj.Name); err != nil {
			return err
		}
	}

	if err := dumpSequences(db, bw); err != nil {
		return err
	}

	for _, idx := range indexes {
		fmt.Fprintf(bw, "%s;\n", idx.SQL)
	}

	fmt.Fprintln(bw, "COMMIT;")
	return bw.Flush()
}

func dumpRows(db *gorm.DB, w io.Writer, table string) error {
	rows, err := db.Raw("SELECT * FROM " + quoteIdent(table)).Rows()
	if err != nil {
		return fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to scan row of %s: %w", table, err)
		}

		literals := make([]string, len(values))
		for i, v := range values {
			literals[i] = sqlLiteral(v)
		}
		fmt.Fprintf(w, "INSERT INTO %s VALUES(%s);\n", quoteIdent(table), strings.Join(literals, ","))
	}
	return rows.Err()
}

func dumpSequences(db *gorm.DB, w io.Writer) error {
	var exists int64
	err := db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_sequence'").
		Scan(&exists).Error
	if err != nil || exists == 0 {
		return err
	}

	var seqs []sequenceRow
	if err := db.Raw("SELECT name, seq FROM sqlite_sequence ORDER BY name").Scan(&seqs).Error; err != nil {
		return fmt.Errorf("failed to read sqlite_sequence: %w", err)
	}

	if len(seqs) == 0 {
		return nil
	}

	fmt.Fprintln(w, "DELETE FROM sqlite_sequence;")
	for _, s := range seqs {
		fmt.Fprintf(w, "INSERT INTO sqlite_sequence VALUES(%s,%d);\n", sqlLiteral(s.Name), s.Seq)
	}
	return nil
}

// CopyTo writes a consistent copy of the live database to path, replacing any
// file already there.
func CopyTo(db *gorm.DB, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return db.Exec("VACUUM INTO ?", path).Error
}

func sqlLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case []byte:
		return "X'" + hex.EncodeToString(val) + "'"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case time.Time:
		return "'" + val.Format(time.RFC3339Nano) + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(val), "'", "''") + "'"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
