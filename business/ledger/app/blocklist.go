package app

import (
	"context"
	"sync"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

// BlockService guards the block list. Reads take the read lock; mutations
// persist synchronously while holding the write lock.
type BlockService struct {
	store   Store
	isAdmin func(id string) bool
	ignore  []platform.SteamID
	log     logger.LoggerInterface

	mu    sync.RWMutex
	block domain.BlockList
}

// NewBlockService creates a block list holding the configured ignore list.
// isAdmin protects owners from being blocked.
func NewBlockService(store Store, isAdmin func(id string) bool, ignore []platform.SteamID, log logger.LoggerInterface) *BlockService {
	return &BlockService{
		store:   store,
		isAdmin: isAdmin,
		ignore:  ignore,
		log:     log,
		block:   domain.NewBlockList(ignore),
	}
}

// Load reads the persisted block list and merges the ignore list into it.
// Ignore-listed parties missing from the store are written back.
func (s *BlockService) Load(ctx context.Context) error {
	ids, err := s.store.LoadBlockList(ctx)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "load block list")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.block = domain.NewBlockList(ids)
	seeded := 0
	for _, id := range s.ignore {
		if !s.block.Has(id) {
			s.block[id] = struct{}{}
			seeded++
		}
	}
	if seeded > 0 {
		// Failure is logged by persist; the merged list stays in memory.
		_ = s.persist(ctx, "seeded", "")
	}
	return nil
}

// Block adds id. The in-memory change stands even when the write fails; the
// returned error then carries CodeStorageError.
func (s *BlockService) Block(ctx context.Context, id platform.SteamID) error {
	if s.isAdmin != nil && s.isAdmin(id.String()) {
		return apperror.Rule(apperror.CodeAdminProtected, id.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.block.Has(id) {
		return apperror.Rule(apperror.CodeAlreadyBlocked, id.String())
	}
	s.block[id] = struct{}{}

	return s.persist(ctx, "blocked", id)
}

// Unblock removes id.
func (s *BlockService) Unblock(ctx context.Context, id platform.SteamID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.block.Has(id) {
		return apperror.NotFound(apperror.CodeNotBlocked, id.String())
	}
	delete(s.block, id)

	return s.persist(ctx, "unblocked", id)
}

// IsBlocked reports membership.
func (s *BlockService) IsBlocked(id platform.SteamID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.block.Has(id)
}

// List returns the blocked ids, sorted.
func (s *BlockService) List() []platform.SteamID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.block.IDs()
}

func (s *BlockService) persist(ctx context.Context, action string, id platform.SteamID) error {
	if err := s.store.SaveBlockList(ctx, s.block.IDs()); err != nil {
		err = apperror.Wrap(err, apperror.CodeStorageError, "save block list")
		s.log.Error(ctx, "block list persistence failed", "action", action, "steam_id", id, "error", err)
		return err
	}
	s.log.Info(ctx, "block list updated", "action", action, "steam_id", id)
	return nil
}
