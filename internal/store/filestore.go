package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/logging"
	"github.com/51D1B3/PharmacieMOS-sub001/internal/models"
)

const (
	storeDirPerm  = 0o755
	slotFilePerm  = 0o644
	slotExtension = ".json"
)

// FileStore persists each slot as one JSON file under a root directory.
type FileStore struct {
	root   string
	logger zerolog.Logger
}

// NewFileStore initializes a file store rooted at the given directory.
func NewFileStore(root string) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("store root required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &FileStore{
		root:   abs,
		logger: logging.Component("file-store"),
	}, nil
}

// Root returns the store's root directory.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) ensureRoot() error {
	return os.MkdirAll(s.root, storeDirPerm)
}

func (s *FileStore) slotPath(key string) string {
	return filepath.Join(s.root, key+slotExtension)
}

// readSlot returns the slot contents, or nil when the slot does not exist.
func (s *FileStore) readSlot(key string) ([]byte, error) {
	data, err := os.ReadFile(s.slotPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// writeSlot replaces the slot contents. The write goes to a temp file
// first and is renamed into place so readers never observe a torn slot.
func (s *FileStore) writeSlot(key string, data []byte) error {
	if err := s.ensureRoot(); err != nil {
		return err
	}

	path := s.slotPath(key)
	tmp, err := os.CreateTemp(s.root, key+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, slotFilePerm); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// LoadConversations returns the persisted conversation list for an identity.
func (s *FileStore) LoadConversations(ctx context.Context, identityID string) ([]models.Conversation, error) {
	if err := validIdentity(identityID); err != nil {
		return nil, err
	}
	key := ConversationsKey(identityID)
	data, err := s.readSlot(key)
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", key, err)
	}
	return decodeConversations(data, key, s.logger), nil
}

// SaveConversations replaces the persisted conversation list for an identity.
func (s *FileStore) SaveConversations(ctx context.Context, identityID string, conversations []models.Conversation) error {
	if err := validIdentity(identityID); err != nil {
		return err
	}
	data, err := encodeConversations(conversations)
	if err != nil {
		return err
	}
	key := ConversationsKey(identityID)
	if err := s.writeSlot(key, data); err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	return nil
}

// LoadUnread returns the persisted unread total for an identity.
func (s *FileStore) LoadUnread(ctx context.Context, identityID string) (int, error) {
	if err := validIdentity(identityID); err != nil {
		return 0, err
	}
	key := UnreadKey(identityID)
	data, err := s.readSlot(key)
	if err != nil {
		return 0, fmt.Errorf("read slot %s: %w", key, err)
	}
	return decodeUnread(data, key, s.logger), nil
}

// SaveUnread replaces the persisted unread total for an identity.
func (s *FileStore) SaveUnread(ctx context.Context, identityID string, total int) error {
	if err := validIdentity(identityID); err != nil {
		return err
	}
	if total < 0 {
		total = 0
	}
	key := UnreadKey(identityID)
	if err := s.writeSlot(key, []byte(strconv.Itoa(total))); err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	return nil
}
