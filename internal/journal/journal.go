package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one stats tick as recorded in the journal.
type Entry struct {
	At     time.Time
	Hunger float64
	Sleep  float64
	Water  float64
	TempC  float64
	CO2PPM float64
	Door   string
	Mood   string
	State  string
}

// Journal appends stats ticks to SQLite from a single writer goroutine.
type Journal struct {
	db *sql.DB

	mu     sync.RWMutex // guards ch against send after close
	ch     chan Entry
	closed bool
	wg     sync.WaitGroup
	once   sync.Once

	dropped atomic.Int64
}

// Open creates or opens the journal at path.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}

	j := &Journal{
		db: db,
		ch: make(chan Entry, 1024),
	}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.loop()
	}()
	return j, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS ticks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at_unix_ms INTEGER NOT NULL,
			hunger REAL NOT NULL,
			sleep REAL NOT NULL,
			water REAL NOT NULL,
			temp_c REAL NOT NULL,
			co2_ppm REAL NOT NULL,
			door TEXT NOT NULL,
			mood TEXT NOT NULL,
			state TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS ticks_at ON ticks(at_unix_ms);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record queues an entry. It never blocks; entries are dropped when the queue is full.
func (j *Journal) Record(e Entry) {
	if j == nil {
		return
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return
	}
	select {
	case j.ch <- e:
	default:
		if n := j.dropped.Add(1); n == 1 || n%100 == 0 {
			slog.Warn("journal: queue full, dropping entries", "dropped", n)
		}
	}
}

func (j *Journal) loop() {
	for e := range j.ch {
		_, err := j.db.Exec(
			`INSERT INTO ticks (at_unix_ms, hunger, sleep, water, temp_c, co2_ppm, door, mood, state)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.At.UnixMilli(), e.Hunger, e.Sleep, e.Water, e.TempC, e.CO2PPM, e.Door, e.Mood, e.State,
		)
		if err != nil {
			slog.Warn("journal: insert failed", "err", err)
		}
	}
}

// Recent returns up to n entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT at_unix_ms, hunger, sleep, water, temp_c, co2_ppm, door, mood, state
		 FROM ticks ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&ms, &e.Hunger, &e.Sleep, &e.Water, &e.TempC, &e.CO2PPM, &e.Door, &e.Mood, &e.State); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.At = time.UnixMilli(ms)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close drains pending entries and closes the database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	var err error
	j.once.Do(func() {
		j.mu.Lock()
		j.closed = true
		close(j.ch)
		j.mu.Unlock()
		j.wg.Wait()
		err = j.db.Close()
	})
	return err
}
