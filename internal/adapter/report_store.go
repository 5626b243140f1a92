package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// HistoryFileName is the database file created inside the reports directory.
const HistoryFileName = "history.db"

// ReportStore persists scan summaries and relocation outcomes.
type ReportStore interface {
	SaveHistory(ctx context.Context, record m.HistoryRecord) (int64, error)
	ListHistory(ctx context.Context, limit int) ([]m.HistoryRecord, error)
	Close() error
}

// SQLiteReportStore keeps history records in a sqlite database.
type SQLiteReportStore struct {
	db *sql.DB
}

const historySchema = `
CREATE TABLE IF NOT EXISTS history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	project TEXT NOT NULL,
	scan_id TEXT,
	created_at INTEGER NOT NULL,
	count INTEGER DEFAULT 0,
	unreachable INTEGER DEFAULT 0,
	raw_bytes INTEGER DEFAULT 0,
	texture_bytes INTEGER DEFAULT 0,
	succeeded INTEGER DEFAULT 0,
	failed INTEGER DEFAULT 0,
	backup_path TEXT
);
CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);
`

// NewSQLiteReportStore opens (or creates) the history database inside dir. The
// directory is created through fs, which must be backed by the host filesystem.
func NewSQLiteReportStore(ctx context.Context, fs ProjectFSAdapter, dir m.Path) (*SQLiteReportStore, error) {
	abs, err := filepath.Abs(string(dir))
	if err != nil {
		return nil, fmt.Errorf("resolve reports dir: %w", err)
	}

	if err := fs.MkdirAll(ctx, m.Path(abs)); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}

	dbPath := filepath.Join(abs, HistoryFileName)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=DELETE"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteReportStore{db: db}, nil
}

// SaveHistory inserts record and returns its id.
func (s *SQLiteReportStore) SaveHistory(ctx context.Context, record m.HistoryRecord) (int64, error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO history (kind, project, scan_id, created_at, count, unreachable,
			raw_bytes, texture_bytes, succeeded, failed, backup_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(record.Kind), record.ProjectName, record.ScanID, record.CreatedAt.UnixNano(),
		record.Count, record.Unreachable, record.RawBytes, record.TextureBytes,
		record.Succeeded, record.Failed, string(record.BackupPath),
	)
	if err != nil {
		return 0, fmt.Errorf("insert history: %w", err)
	}

	return result.LastInsertId()
}

// ListHistory returns the newest records first. A limit <= 0 returns every record.
func (s *SQLiteReportStore) ListHistory(ctx context.Context, limit int) ([]m.HistoryRecord, error) {
	query := `SELECT id, kind, project, scan_id, created_at, count, unreachable,
		raw_bytes, texture_bytes, succeeded, failed, backup_path
		FROM history ORDER BY created_at DESC, id DESC`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"

		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var records []m.HistoryRecord

	for rows.Next() {
		var (
			record     m.HistoryRecord
			kind       string
			scanID     sql.NullString
			createdAt  int64
			backupPath sql.NullString
		)

		if err := rows.Scan(
			&record.ID, &kind, &record.ProjectName, &scanID, &createdAt, &record.Count,
			&record.Unreachable, &record.RawBytes, &record.TextureBytes,
			&record.Succeeded, &record.Failed, &backupPath,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		record.Kind = m.HistoryKind(kind)
		record.ScanID = scanID.String
		record.CreatedAt = time.Unix(0, createdAt)
		record.BackupPath = m.Path(backupPath.String)

		records = append(records, record)
	}

	return records, rows.Err()
}

// Close releases the database.
func (s *SQLiteReportStore) Close() error {
	return s.db.Close()
}
