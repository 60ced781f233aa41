// Package jsonstore persists the ledger, the block list and pending
// settlements as JSON files.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/app"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
)

const (
	LedgerFile    = "ledger.json"
	BlockListFile = "blocklist.json"
	PendingFile   = "pending.json"
)

var _ app.Store = (*Store)(nil)

type blockListFile struct {
	Blocked []platform.SteamID `json:"blocked"`
}

type pendingFile struct {
	Pending []domain.Settlement `json:"pending"`
}

// Store keeps one file per document under dir. Writes go to a temp file in
// the same directory and are renamed into place.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates dir if needed and writes the default documents for any file
// that does not exist yet.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.Internal(apperror.CodeStorageError, "create "+dir, err)
	}

	s := &Store{dir: dir}
	defaults := map[string]any{
		LedgerFile:    domain.NewLedger(),
		BlockListFile: blockListFile{Blocked: []platform.SteamID{}},
		PendingFile:   pendingFile{Pending: []domain.Settlement{}},
	}
	for name, v := range defaults {
		_, err := os.Stat(s.path(name))
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.Internal(apperror.CodeStorageError, "stat "+name, err)
		}
		if err := s.write(name, v); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) LoadLedger(context.Context) (domain.Ledger, error) {
	var l domain.Ledger
	found, err := s.read(LedgerFile, &l)
	if err != nil || !found {
		return domain.NewLedger(), err
	}
	return l.Normalize(), nil
}

func (s *Store) SaveLedger(_ context.Context, l domain.Ledger) error {
	return s.write(LedgerFile, l)
}

func (s *Store) LoadBlockList(context.Context) ([]platform.SteamID, error) {
	var f blockListFile
	if _, err := s.read(BlockListFile, &f); err != nil {
		return nil, err
	}
	return f.Blocked, nil
}

func (s *Store) SaveBlockList(_ context.Context, ids []platform.SteamID) error {
	if ids == nil {
		ids = []platform.SteamID{}
	}
	return s.write(BlockListFile, blockListFile{Blocked: ids})
}

func (s *Store) LoadPending(context.Context) ([]domain.Settlement, error) {
	var f pendingFile
	if _, err := s.read(PendingFile, &f); err != nil {
		return nil, err
	}
	return f.Pending, nil
}

func (s *Store) SavePending(_ context.Context, pending []domain.Settlement) error {
	if pending == nil {
		pending = []domain.Settlement{}
	}
	return s.write(PendingFile, pendingFile{Pending: pending})
}

func (s *Store) Close() error { return nil }

func (s *Store) read(name string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, apperror.Internal(apperror.CodeStorageError, "read "+name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, apperror.Internal(apperror.CodeStorageError, "decode "+name, err)
	}
	return true, nil
}

func (s *Store) write(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperror.Internal(apperror.CodeStorageError, "encode "+name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return apperror.Internal(apperror.CodeStorageError, "write "+name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return apperror.Internal(apperror.CodeStorageError, "write "+name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperror.Internal(apperror.CodeStorageError, "sync "+name, err)
	}
	if err := tmp.Close(); err != nil {
		return apperror.Internal(apperror.CodeStorageError, "close "+name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return apperror.Internal(apperror.CodeStorageError, fmt.Sprintf("rename %s", name), err)
	}
	return nil
}
