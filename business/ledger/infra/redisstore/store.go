// Package redisstore persists the ledger and block list in Redis: the ledger
// as one hash keyed "<category>:<window>", the block list as a set, pending
// settlements as a hash of JSON documents keyed by offer id.
package redisstore

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/app"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
)

const defaultPrefix = "tradebot"

var _ app.Store = (*Store)(nil)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store is a Redis-backed store.
type Store struct {
	client       *redis.Client
	ledgerKey    string
	blockListKey string
	pendingKey   string
}

// New connects and pings the server.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, apperror.External(apperror.CodeStorageError, "redis ping "+cfg.Addr, err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{
		client:       client,
		ledgerKey:    prefix + ":ledger",
		blockListKey: prefix + ":blocklist",
		pendingKey:   prefix + ":pending",
	}, nil
}

func field(c domain.Category, w domain.Window) string {
	return string(c) + ":" + string(w)
}

// decodeLedger turns hash fields back into counters; unknown or malformed
// fields are skipped.
func decodeLedger(fields map[string]string) domain.Ledger {
	l := domain.NewLedger()
	for k, v := range fields {
		i := strings.LastIndex(k, ":")
		if i < 0 {
			continue
		}
		cat, win := domain.Category(k[:i]), domain.Window(k[i+1:])
		if domain.ValidateEntry(cat, win) != nil {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		c := l[cat]
		switch win {
		case domain.Lifetime:
			c.Lifetime = n
		case domain.Weekly:
			c.Weekly = n
		case domain.Daily:
			c.Daily = n
		}
		l[cat] = c
	}
	return l
}

func encodeLedger(l domain.Ledger) map[string]any {
	out := make(map[string]any, len(l)*3)
	for cat, c := range l {
		out[field(cat, domain.Lifetime)] = c.Lifetime
		out[field(cat, domain.Weekly)] = c.Weekly
		out[field(cat, domain.Daily)] = c.Daily
	}
	return out
}

func (s *Store) LoadLedger(ctx context.Context) (domain.Ledger, error) {
	fields, err := s.client.HGetAll(ctx, s.ledgerKey).Result()
	if err != nil {
		return nil, apperror.External(apperror.CodeStorageError, "hgetall "+s.ledgerKey, err)
	}
	return decodeLedger(fields), nil
}

func (s *Store) SaveLedger(ctx context.Context, l domain.Ledger) error {
	if err := s.client.HSet(ctx, s.ledgerKey, encodeLedger(l)).Err(); err != nil {
		return apperror.External(apperror.CodeStorageError, "hset "+s.ledgerKey, err)
	}
	return nil
}

func (s *Store) LoadBlockList(ctx context.Context) ([]platform.SteamID, error) {
	members, err := s.client.SMembers(ctx, s.blockListKey).Result()
	if err != nil {
		return nil, apperror.External(apperror.CodeStorageError, "smembers "+s.blockListKey, err)
	}
	ids := make([]platform.SteamID, 0, len(members))
	for _, m := range members {
		ids = append(ids, platform.SteamID(m))
	}
	return ids, nil
}

// SaveBlockList replaces the set atomically.
func (s *Store) SaveBlockList(ctx context.Context, ids []platform.SteamID) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.blockListKey)
		if len(ids) > 0 {
			members := make([]any, len(ids))
			for i, id := range ids {
				members[i] = id.String()
			}
			pipe.SAdd(ctx, s.blockListKey, members...)
		}
		return nil
	})
	if err != nil {
		return apperror.External(apperror.CodeStorageError, "replace "+s.blockListKey, err)
	}
	return nil
}

// LoadPending skips documents that no longer decode.
func (s *Store) LoadPending(ctx context.Context) ([]domain.Settlement, error) {
	fields, err := s.client.HGetAll(ctx, s.pendingKey).Result()
	if err != nil {
		return nil, apperror.External(apperror.CodeStorageError, "hgetall "+s.pendingKey, err)
	}
	out := make([]domain.Settlement, 0, len(fields))
	for _, v := range fields {
		var st domain.Settlement
		if err := json.Unmarshal([]byte(v), &st); err != nil {
			continue
		}
		out = append(out, st)
	}
	domain.SortSettlements(out)
	return out, nil
}

// SavePending replaces the hash atomically.
func (s *Store) SavePending(ctx context.Context, pending []domain.Settlement) error {
	fields := make(map[string]any, len(pending))
	for _, st := range pending {
		raw, err := json.Marshal(st)
		if err != nil {
			return apperror.Internal(apperror.CodeStorageError, "encode "+st.OfferID, err)
		}
		fields[st.OfferID] = string(raw)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.pendingKey)
		if len(fields) > 0 {
			pipe.HSet(ctx, s.pendingKey, fields)
		}
		return nil
	})
	if err != nil {
		return apperror.External(apperror.CodeStorageError, "replace "+s.pendingKey, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
