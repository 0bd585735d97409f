package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

// SQLiteSink stores one wide table per profile in a local SQLite file, one
// column per feature. It is meant for single-machine runs.
type SQLiteSink struct {
	db *sql.DB

	mu     sync.Mutex
	tables map[string]map[string]struct{} // table -> known columns
}

// OpenSQLite opens (or creates) the database file.
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; serialize through a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	return &SQLiteSink{db: db, tables: make(map[string]map[string]struct{})}, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error { return s.db.Close() }

// Ping checks that the database file is usable.
func (s *SQLiteSink) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// TableName returns the table used for a profile.
func TableName(profile string) string {
	var b strings.Builder
	b.WriteString("features_")
	for _, r := range strings.ToLower(profile) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqliteType(kind models.ColumnKind) string {
	if kind == models.ColumnCategorical {
		return "TEXT"
	}
	return "REAL"
}

// ensureTable creates the profile table and adds any schema columns it lacks.
func (s *SQLiteSink) ensureTable(ctx context.Context, table string, schema []models.Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	known, ok := s.tables[table]
	if !ok {
		create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (battle_id TEXT PRIMARY KEY, player_won INTEGER)`, quoteIdent(table))
		if _, err := s.db.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("create %s: %w", table, err)
		}

		rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT name FROM pragma_table_info('%s')`, table))
		if err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		known = make(map[string]struct{})
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				rows.Close()
				return fmt.Errorf("inspect %s: %w", table, err)
			}
			known[name] = struct{}{}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		s.tables[table] = known
	}

	for _, c := range schema {
		if _, ok := known[c.Name]; ok {
			continue
		}
		alter := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, quoteIdent(table), quoteIdent(c.Name), sqliteType(c.Kind))
		if _, err := s.db.ExecContext(ctx, alter); err != nil {
			return fmt.Errorf("add column %s: %w", c.Name, err)
		}
		known[c.Name] = struct{}{}
	}
	return nil
}

// WriteFeatures upserts rows by battle id in one transaction.
func (s *SQLiteSink) WriteFeatures(ctx context.Context, profile string, schema []models.Column, rows []models.FeatureRecord) error {
	if len(rows) == 0 {
		return nil
	}
	table := TableName(profile)
	if err := s.ensureTable(ctx, table, schema); err != nil {
		return err
	}

	cols := make([]string, 0, len(schema)+2)
	cols = append(cols, "battle_id", "player_won")
	for _, c := range schema {
		cols = append(cols, quoteIdent(c.Name))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, quoteIdent(table), strings.Join(cols, ","), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for i := range rows {
		r := &rows[i]
		args[0] = r.BattleID
		args[1] = nil
		if r.PlayerWon != nil {
			args[1] = *r.PlayerWon
		}
		for j, c := range schema {
			if c.Kind == models.ColumnCategorical {
				args[j+2] = r.Categorical[c.Name]
			} else {
				args[j+2] = r.Numeric[c.Name]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert battle %s: %w", r.BattleID, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored rows for a profile.
func (s *SQLiteSink) Count(ctx context.Context, profile string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, quoteIdent(TableName(profile)))).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", profile, err)
	}
	return n, nil
}

// Numeric reads one numeric feature of a stored battle.
func (s *SQLiteSink) Numeric(ctx context.Context, profile, battleID, column string) (float64, error) {
	var v sql.NullFloat64
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE battle_id = ?`, quoteIdent(column), quoteIdent(TableName(profile)))
	if err := s.db.QueryRowContext(ctx, query, battleID).Scan(&v); err != nil {
		return 0, fmt.Errorf("read %s for %s: %w", column, battleID, err)
	}
	return v.Float64, nil
}
