package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/logging"
	"github.com/51D1B3/PharmacieMOS-sub001/internal/models"
)

// SQLiteStore persists slots in a single key-value table.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenSQLite opens (and initializes) a SQLite-backed slot store at the
// given path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)", path)
	return openSQLiteDSN(dsn)
}

// OpenSQLiteInMemory opens an in-memory slot store, used by tests.
func OpenSQLiteInMemory() (*SQLiteStore, error) {
	return openSQLiteDSN("file::memory:?mode=memory&cache=shared")
}

func openSQLiteDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to chat database: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		logger: logging.Component("sqlite-store"),
	}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS chat_slots (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize chat schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) readSlot(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM chat_slots WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read slot %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLiteStore) writeSlot(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_slots (key, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(data))
	if err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	return nil
}

// LoadConversations returns the persisted conversation list for an identity.
func (s *SQLiteStore) LoadConversations(ctx context.Context, identityID string) ([]models.Conversation, error) {
	if err := validIdentity(identityID); err != nil {
		return nil, err
	}
	key := ConversationsKey(identityID)
	data, err := s.readSlot(ctx, key)
	if err != nil {
		return nil, err
	}
	return decodeConversations(data, key, s.logger), nil
}

// SaveConversations replaces the persisted conversation list for an identity.
func (s *SQLiteStore) SaveConversations(ctx context.Context, identityID string, conversations []models.Conversation) error {
	if err := validIdentity(identityID); err != nil {
		return err
	}
	data, err := encodeConversations(conversations)
	if err != nil {
		return err
	}
	return s.writeSlot(ctx, ConversationsKey(identityID), data)
}

// LoadUnread returns the persisted unread total for an identity.
func (s *SQLiteStore) LoadUnread(ctx context.Context, identityID string) (int, error) {
	if err := validIdentity(identityID); err != nil {
		return 0, err
	}
	key := UnreadKey(identityID)
	data, err := s.readSlot(ctx, key)
	if err != nil {
		return 0, err
	}
	return decodeUnread(data, key, s.logger), nil
}

// SaveUnread replaces the persisted unread total for an identity.
func (s *SQLiteStore) SaveUnread(ctx context.Context, identityID string, total int) error {
	if err := validIdentity(identityID); err != nil {
		return err
	}
	if total < 0 {
		total = 0
	}
	return s.writeSlot(ctx, UnreadKey(identityID), []byte(strconv.Itoa(total)))
}
