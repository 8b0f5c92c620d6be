package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// BlobStore is a binary key-value store for PDF bytes, kept separate from
// the text-based session store. Keys are "pdf-" + session id.
type BlobStore struct {
	conn *sql.DB
}

// OpenBlobStore opens (or creates) the blob database and initializes its schema.
func OpenBlobStore(dbPath string) (*BlobStore, error) {
	// Ensure parent directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1) // SQLite only supports one writer
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	b := &BlobStore{conn: conn}
	if err := b.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return b, nil
}

func (b *BlobStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		size INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := b.conn.Exec(schema)
	return err
}

// Close closes the database connection
func (b *BlobStore) Close() error {
	return b.conn.Close()
}

// Put stores bytes under key, replacing any prior value. One statement, so
// readers never observe a partial write.
func (b *BlobStore) Put(key string, data []byte) error {
	_, err := b.conn.Exec(`
		INSERT INTO blobs (key, data, size, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			size = excluded.size,
			updated_at = CURRENT_TIMESTAMP
	`, key, data, len(data))
	if err != nil {
		return fmt.Errorf("failed to store blob %q: %w", key, err)
	}
	return nil
}

// Get retrieves the bytes stored under key. A missing key is reported via
// the second return value, not as an error.
func (b *BlobStore) Get(key string) ([]byte, bool, error) {
	var data []byte
	err := b.conn.QueryRow(`SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read blob %q: %w", key, err)
	}
	return data, true, nil
}

// Delete removes the bytes stored under key. Deleting a missing key is a no-op.
func (b *BlobStore) Delete(key string) error {
	if _, err := b.conn.Exec(`DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete blob %q: %w", key, err)
	}
	return nil
}

// Size returns the stored size of a blob without loading its bytes.
func (b *BlobStore) Size(key string) (int64, bool, error) {
	var size int64
	err := b.conn.QueryRow(`SELECT size FROM blobs WHERE key = ?`, key).Scan(&size)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to stat blob %q: %w", key, err)
	}
	return size, true, nil
}

// TotalSize returns the combined size of all stored blobs.
func (b *BlobStore) TotalSize() (int64, error) {
	var total int64
	err := b.conn.QueryRow(`SELECT COALESCE(SUM(size), 0) FROM blobs`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum blob sizes: %w", err)
	}
	return total, nil
}
