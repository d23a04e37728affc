package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"daylog/internal/service"
)

const (
	keyToken    = "auth/token"
	keyUser     = "auth/user"
	keyLogTypes = "prefs/log_types"
)

// BadgerStore implements Store on an embedded BadgerDB.
// Values are stored as JSON.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadger opens (creating if needed) the state database in dir.
// An empty dir opens an in-memory database, which is lost on Close.
func OpenBadger(dir string, logger *slog.Logger) (*BadgerStore, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create state directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}

	opts = opts.WithSyncWrites(true).WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Token implements Store.
func (s *BadgerStore) Token(ctx context.Context) (string, error) {
	var token string
	err := s.get(keyToken, &token)
	return token, err
}

// SetToken implements Store.
func (s *BadgerStore) SetToken(ctx context.Context, token string) error {
	return s.put(keyToken, token)
}

// User implements Store.
func (s *BadgerStore) User(ctx context.Context) (service.User, error) {
	var u service.User
	err := s.get(keyUser, &u)
	return u, err
}

// SetUser implements Store.
func (s *BadgerStore) SetUser(ctx context.Context, u service.User) error {
	return s.put(keyUser, u)
}

// LogTypes implements Store.
func (s *BadgerStore) LogTypes(ctx context.Context) ([]service.LogType, error) {
	var types []service.LogType
	err := s.get(keyLogTypes, &types)
	return types, err
}

// SetLogTypes implements Store.
func (s *BadgerStore) SetLogTypes(ctx context.Context, types []service.LogType) error {
	return s.put(keyLogTypes, types)
}

// Clear implements Store.
func (s *BadgerStore) Clear(ctx context.Context) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range []string{keyToken, keyUser} {
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) get(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

func (s *BadgerStore) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

var _ Store = (*BadgerStore)(nil)
