package infra

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Ensure sqlcipher driver is registered.
	_ "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/focusgate/focusgate/internal/domain"
)

const historyDBName = "history.db"

// EncryptedHistory implements domain.HistoryStore on a SQLCipher-encrypted
// SQLite database. Records are append-only and never mutated.
type EncryptedHistory struct {
	db     *sql.DB
	dbPath string
}

// NewEncryptedHistory opens (or creates) the encrypted history database.
// The key is used as the SQLCipher passphrase via PRAGMA key.
func NewEncryptedHistory(dataDir string, key []byte) (*EncryptedHistory, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, historyDBName)
	keyHex := hex.EncodeToString(key)

	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", dbPath, keyHex)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open encrypted database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to encrypted database: %w", err)
	}

	h := &EncryptedHistory{db: db, dbPath: dbPath}
	if err := h.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return h, nil
}

func (h *EncryptedHistory) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_minutes INTEGER NOT NULL,
		mode TEXT NOT NULL,
		app_names TEXT NOT NULL
	);
	`
	_, err := h.db.Exec(schema)
	return err
}

// Append persists one completed-session record.
func (h *EncryptedHistory) Append(record domain.SessionRecord) error {
	names, err := json.Marshal(record.AppNames)
	if err != nil {
		return fmt.Errorf("failed to encode app names: %w", err)
	}

	_, err = h.db.Exec(`
		INSERT INTO sessions (id, started_at, duration_minutes, mode, app_names)
		VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.StartedAt.Unix(), record.DurationMinutes,
		string(record.Mode), string(names),
	)
	return err
}

// Recent returns up to limit records, newest first.
func (h *EncryptedHistory) Recent(limit int) ([]domain.SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.Query(`
		SELECT id, started_at, duration_minutes, mode, app_names
		FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.SessionRecord
	for rows.Next() {
		var r domain.SessionRecord
		var startedAt int64
		var mode, names string
		if err := rows.Scan(&r.ID, &startedAt, &r.DurationMinutes, &mode, &names); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(startedAt, 0)
		r.Mode = domain.SessionMode(mode)
		if err := json.Unmarshal([]byte(names), &r.AppNames); err != nil {
			return nil, fmt.Errorf("failed to decode app names: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close releases the database connection.
func (h *EncryptedHistory) Close() error {
	return h.db.Close()
}

// Path returns the database file location (for the status command).
func (h *EncryptedHistory) Path() string {
	return h.dbPath
}

// Ensure EncryptedHistory implements domain.HistoryStore.
var _ domain.HistoryStore = (*EncryptedHistory)(nil)
