package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"inkwell/internal/models"
)

type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msgf(format, args...)
}

// BadgerSlot persists the signed-in user in a badger database, so a CLI
// session survives between invocations.
type BadgerSlot struct {
	db *badger.DB
}

// OpenBadgerSlot opens (creating if needed) the slot database in dir.
func OpenBadgerSlot(dir string, log zerolog.Logger) (*BadgerSlot, error) {
	if dir == "" {
		return nil, errors.New("session dir is required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create session directory %s: %w", dir, err)
	}
	opts := badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{log: log})
	return openBadger(opts)
}

// OpenInMemoryBadgerSlot is used by tests.
func OpenInMemoryBadgerSlot() (*BadgerSlot, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	return openBadger(opts)
}

func openBadger(opts badger.Options) (*BadgerSlot, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	return &BadgerSlot{db: db}, nil
}

func (s *BadgerSlot) Load(ctx context.Context) (*models.User, error) {
	var u models.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(SlotKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &u)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrEmptySlot
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &u, nil
}

func (s *BadgerSlot) Save(ctx context.Context, u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(SlotKey), data)
	})
}

func (s *BadgerSlot) Clear(ctx context.Context) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(SlotKey))
	})
}

func (s *BadgerSlot) Close() error {
	return s.db.Close()
}
