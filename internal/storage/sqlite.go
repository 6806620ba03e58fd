// Package storage persists the console activity feed to SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/rusenback/labconsole/internal/model"
)

const (
	writeBuffer   = 1000
	batchSize     = 50
	flushInterval = 5 * time.Second

	// DefaultRetention is how long journal rows are kept
	DefaultRetention = 30 * 24 * time.Hour
)

// Record is one persisted feed entry
type Record struct {
	Session string
	Entry   model.LogEntry
}

// Journal is an append-only store of feed entries. Writes are queued and
// flushed in batches by a background goroutine.
type Journal struct {
	db        *sql.DB
	session   string
	retention time.Duration
	log       *zap.Logger

	writeChan chan *model.LogEntry
	flushChan chan chan struct{}
	closeChan chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Option configures a Journal
type Option func(*Journal)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(j *Journal) {
		if l != nil {
			j.log = l
		}
	}
}

// WithRetention sets how long rows are kept before cleanup removes them
func WithRetention(d time.Duration) Option {
	return func(j *Journal) {
		if d > 0 {
			j.retention = d
		}
	}
}

// Open opens (or creates) the journal at path and starts a new session
func Open(path string, opts ...Option) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps the writer and readers from fighting over locks.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	j := &Journal{
		db:        db,
		session:   uuid.NewString(),
		retention: DefaultRetention,
		log:       zap.NewNop(),
		writeChan: make(chan *model.LogEntry, writeBuffer),
		flushChan: make(chan chan struct{}),
		closeChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(j)
	}
	j.log = j.log.Named("journal").With(zap.String("session", j.session))

	j.wg.Add(2)
	go j.writer()
	go j.cleanup()

	return j, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS activity_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activity_time
	ON activity_log(timestamp);
	`

	_, err := db.Exec(schema)
	return err
}

// Session returns the id stamped on every row written by this journal
func (j *Journal) Session() string {
	return j.session
}

// Write queues an entry. It never blocks: when the queue is full the entry
// is dropped and the drop is logged.
func (j *Journal) Write(entry *model.LogEntry) {
	select {
	case <-j.closeChan:
		return
	default:
	}

	select {
	case j.writeChan <- entry:
	default:
		j.log.Warn("write queue full, entry dropped", zap.String("message", entry.Message))
	}
}

// Flush blocks until every queued entry is on disk
func (j *Journal) Flush() {
	done := make(chan struct{})
	select {
	case j.flushChan <- done:
		<-done
	case <-j.closeChan:
	}
}

func (j *Journal) writer() {
	defer j.wg.Done()

	buffer := make([]*model.LogEntry, 0, batchSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	drain := func() {
		for {
			select {
			case entry := <-j.writeChan:
				buffer = append(buffer, entry)
			default:
				return
			}
		}
	}
	flush := func() {
		if len(buffer) > 0 {
			j.batchWrite(buffer)
			buffer = buffer[:0]
		}
	}

	for {
		select {
		case entry := <-j.writeChan:
			buffer = append(buffer, entry)
			if len(buffer) >= batchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case done := <-j.flushChan:
			drain()
			flush()
			close(done)

		case <-j.closeChan:
			drain()
			flush()
			return
		}
	}
}

func (j *Journal) batchWrite(entries []*model.LogEntry) {
	tx, err := j.db.Begin()
	if err != nil {
		j.log.Error("begin batch", zap.Error(err))
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO activity_log (session, timestamp, severity, message)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		j.log.Error("prepare batch", zap.Error(err))
		return
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(j.session, e.Timestamp.UnixNano(), e.Severity.String(), e.Message); err != nil {
			j.log.Warn("insert entry", zap.Error(err))
		}
	}

	if err := tx.Commit(); err != nil {
		j.log.Error("commit batch", zap.Int("entries", len(entries)), zap.Error(err))
	}
}

// Recent returns up to limit entries across all sessions, newest first
func (j *Journal) Recent(limit int) ([]Record, error) {
	rows, err := j.db.Query(`
		SELECT session, timestamp, severity, message
		FROM activity_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r        Record
			ts       int64
			severity string
		)
		if err := rows.Scan(&r.Session, &ts, &severity, &r.Entry.Message); err != nil {
			return nil, err
		}
		r.Entry.Timestamp = time.Unix(0, ts)
		r.Entry.Severity = model.ParseSeverity(severity)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (j *Journal) cleanup() {
	defer j.wg.Done()

	j.Purge(time.Now().Add(-j.retention))

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.Purge(time.Now().Add(-j.retention))
		case <-j.closeChan:
			return
		}
	}
}

// Purge deletes rows older than cutoff in small batches and returns how many
// were removed.
func (j *Journal) Purge(cutoff time.Time) int64 {
	const deleteBatch = 1000

	var total int64
	for {
		result, err := j.db.Exec(`
			DELETE FROM activity_log WHERE id IN (
				SELECT id FROM activity_log WHERE timestamp < ? LIMIT ?
			)`,
			cutoff.UnixNano(), deleteBatch,
		)
		if err != nil {
			j.log.Error("purge", zap.Error(err))
			return total
		}

		n, err := result.RowsAffected()
		if err != nil || n == 0 {
			return total
		}
		total += n
	}
}

// Close flushes queued entries and closes the database
func (j *Journal) Close() error {
	j.closeOnce.Do(func() {
		close(j.closeChan)
	})
	j.wg.Wait()
	return j.db.Close()
}
