// internal/evustore/store.go
package evustore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/tamzrod/luxtronik-replicator/internal/derive"
)

// Store persists learned EVU windows so a restart does not forget them.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite file at path and migrates it.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("evustore: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("evustore: ping: %w", err)
	}
	// one writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(ddlWindows); err != nil {
		db.Close()
		return nil, fmt.Errorf("evustore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

const ddlWindows = `
CREATE TABLE IF NOT EXISTS evu_windows (
    weekday    INTEGER NOT NULL,  -- 0 = Sunday
    slot       INTEGER NOT NULL,  -- 0 = first, 1 = second
    start_min  INTEGER NOT NULL,  -- minutes after midnight, -1 = unset
    end_min    INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,  -- Unix seconds
    PRIMARY KEY (weekday, slot)
);
`

// Load returns the stored windows. Days never stored come back unset.
func (s *Store) Load(ctx context.Context) ([7]derive.DayWindows, error) {
	var days [7]derive.DayWindows
	for i := range days {
		days[i] = derive.DayWindows{
			First:  derive.Window{Start: derive.Unset, End: derive.Unset},
			Second: derive.Window{Start: derive.Unset, End: derive.Unset},
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT weekday, slot, start_min, end_min FROM evu_windows`)
	if err != nil {
		return days, fmt.Errorf("evustore: load: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day, slot, start, end int
		if err := rows.Scan(&day, &slot, &start, &end); err != nil {
			return days, fmt.Errorf("evustore: scan: %w", err)
		}
		if day < 0 || day > 6 {
			continue
		}
		w := derive.Window{Start: start, End: end}
		switch slot {
		case 0:
			days[day].First = w
		case 1:
			days[day].Second = w
		}
	}
	return days, rows.Err()
}

// Save replaces every stored window in one transaction.
func (s *Store) Save(ctx context.Context, days [7]derive.DayWindows) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("evustore: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO evu_windows (weekday, slot, start_min, end_min, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (weekday, slot) DO UPDATE SET
    start_min = excluded.start_min,
    end_min = excluded.end_min,
    updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("evustore: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for day, dw := range days {
		for slot, w := range []derive.Window{dw.First, dw.Second} {
			if _, err := stmt.ExecContext(ctx, day, slot, w.Start, w.End, now); err != nil {
				return fmt.Errorf("evustore: save weekday=%d slot=%d: %w", day, slot, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("evustore: commit: %w", err)
	}
	return nil
}

// LoadInto imports the stored windows into t.
func (s *Store) LoadInto(ctx context.Context, t *derive.EVUTracker) error {
	days, err := s.Load(ctx)
	if err != nil {
		return err
	}
	t.Import(days)
	return nil
}

// SaveIfChanged writes t's windows when a boundary was learned since the
// last call.
func (s *Store) SaveIfChanged(ctx context.Context, t *derive.EVUTracker) (bool, error) {
	if !t.TakeChanged() {
		return false, nil
	}
	return true, s.Save(ctx, t.Export())
}
