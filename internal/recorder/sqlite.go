package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"HabitSentinel/internal/model"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists week history and reminder deliveries to SQLite.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS week_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			kind        TEXT NOT NULL,
			week_start  TEXT NOT NULL,
			day_values  TEXT NOT NULL,
			total       REAL,
			archived_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_week_kind_start ON week_history(kind, week_start)`,

		`CREATE TABLE IF NOT EXISTS reminder_log (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			reminder_id  TEXT NOT NULL,
			title        TEXT,
			scheduled_at INTEGER NOT NULL,
			delivered_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reminder_ts ON reminder_log(delivered_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) ArchiveWeek(a model.WeekArchive) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := json.Marshal(a.Values)
	if err != nil {
		return fmt.Errorf("encode week values: %w", err)
	}
	total := 0.0
	for _, v := range a.Values {
		total += v
	}
	_, err = r.db.Exec(`INSERT INTO week_history
		(kind, week_start, day_values, total, archived_at)
		VALUES (?,?,?,?,?)`,
		string(a.Kind), a.WeekStart.Format("2006-01-02"), string(values), total, a.ArchivedAt.Unix(),
	)
	return err
}

func (r *SQLiteRecorder) RecordReminder(evt *ReminderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO reminder_log
		(reminder_id, title, scheduled_at, delivered_at)
		VALUES (?,?,?,?)`,
		evt.ID, evt.Title, evt.ScheduledAt.Unix(), evt.DeliveredAt.Unix(),
	)
	return err
}

// RecentWeeks returns up to limit archived weeks of kind, newest first.
func (r *SQLiteRecorder) RecentWeeks(kind model.ArchiveKind, limit int) ([]model.WeekArchive, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT week_start, day_values, archived_at FROM week_history
		WHERE kind = ? ORDER BY week_start DESC, id DESC LIMIT ?`, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("query week history: %w", err)
	}
	defer rows.Close()

	var out []model.WeekArchive
	for rows.Next() {
		var start, values string
		var archivedAt int64
		if err := rows.Scan(&start, &values, &archivedAt); err != nil {
			return nil, fmt.Errorf("scan week history: %w", err)
		}
		ws, err := time.ParseInLocation("2006-01-02", start, time.Local)
		if err != nil {
			r.log.Warn("skip week history row", zap.String("week_start", start), zap.Error(err))
			continue
		}
		a := model.WeekArchive{Kind: kind, WeekStart: ws, ArchivedAt: time.Unix(archivedAt, 0)}
		if err := json.Unmarshal([]byte(values), &a.Values); err != nil {
			r.log.Warn("skip week history row", zap.String("week_start", start), zap.Error(err))
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
