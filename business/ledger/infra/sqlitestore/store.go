// Package sqlitestore persists the ledger, the block list and pending
// settlements in SQLite.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go driver

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/app"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
)

var _ app.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_counters (
	category TEXT PRIMARY KEY,
	lifetime INTEGER NOT NULL DEFAULT 0,
	weekly   INTEGER NOT NULL DEFAULT 0,
	daily    INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS blocked_parties (
	steam_id   TEXT PRIMARY KEY,
	blocked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS pending_settlements (
	offer_id   TEXT PRIMARY KEY,
	partner    TEXT NOT NULL,
	category   TEXT NOT NULL,
	units      INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);`

// Store is a single-connection SQLite store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and applies the schema.
func New(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperror.Internal(apperror.CodeStorageError, "create "+dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeStorageError, "open sqlite", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, apperror.Internal(apperror.CodeStorageError, "apply schema", err)
	}

	s := &Store{db: db}
	if err := s.seed(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// seed inserts a zero row per category so the default shape exists on disk.
func (s *Store) seed(ctx context.Context) error {
	for _, c := range domain.Categories() {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO ledger_counters (category) VALUES (?)`, string(c)); err != nil {
			return apperror.Internal(apperror.CodeStorageError, "seed ledger", err)
		}
	}
	return nil
}

func (s *Store) LoadLedger(ctx context.Context) (domain.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, lifetime, weekly, daily FROM ledger_counters`)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeStorageError, "query ledger", err)
	}
	defer rows.Close()

	l := domain.NewLedger()
	for rows.Next() {
		var (
			cat string
			c   domain.Counters
		)
		if err := rows.Scan(&cat, &c.Lifetime, &c.Weekly, &c.Daily); err != nil {
			return nil, apperror.Internal(apperror.CodeStorageError, "scan ledger", err)
		}
		l[domain.Category(cat)] = c
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(apperror.CodeStorageError, "iterate ledger", err)
	}
	return l.Normalize(), nil
}

func (s *Store) SaveLedger(ctx context.Context, l domain.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Internal(apperror.CodeStorageError, "begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger_counters (category, lifetime, weekly, daily)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET
			lifetime = excluded.lifetime,
			weekly   = excluded.weekly,
			daily    = excluded.daily`)
	if err != nil {
		return apperror.Internal(apperror.CodeStorageError, "prepare", err)
	}
	defer stmt.Close()

	for cat, c := range l {
		if _, err := stmt.ExecContext(ctx, string(cat), c.Lifetime, c.Weekly, c.Daily); err != nil {
			return apperror.Internal(apperror.CodeStorageError, "upsert "+string(cat), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperror.Internal(apperror.CodeStorageError, "commit", err)
	}
	return nil
}

func (s *Store) LoadBlockList(ctx context.Context) ([]platform.SteamID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT steam_id FROM blocked_parties ORDER BY steam_id`)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeStorageError, "query block list", err)
	}
	defer rows.Close()

	var ids []platform.SteamID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperror.Internal(apperror.CodeStorageError, "scan block list", err)
		}
		ids = append(ids, platform.SteamID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(apperror.CodeStorageError, "iterate block list", err)
	}
	return ids, nil
}

// SaveBlockList replaces the table contents with ids.
func (s *Store) SaveBlockList(ctx context.Context, ids []platform.SteamID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Internal(apperror.CodeStorageError, "begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM blocked_parties`); err != nil {
		return apperror.Internal(apperror.CodeStorageError, "clear block list", err)
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `INSERT INTO blocked_parties (steam_id) VALUES (?)`, id.String()); err != nil {
			return apperror.Internal(apperror.CodeStorageError, "insert "+id.String(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperror.Internal(apperror.CodeStorageError, "commit", err)
	}
	return nil
}

func (s *Store) LoadPending(ctx context.Context) ([]domain.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT offer_id, partner, category, units, created_at FROM pending_settlements ORDER BY offer_id`)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeStorageError, "query pending", err)
	}
	defer rows.Close()

	var out []domain.Settlement
	for rows.Next() {
		var (
			st       domain.Settlement
			partner  string
			category string
			created  int64
		)
		if err := rows.Scan(&st.OfferID, &partner, &category, &st.Units, &created); err != nil {
			return nil, apperror.Internal(apperror.CodeStorageError, "scan pending", err)
		}
		st.Partner = platform.SteamID(partner)
		st.Category = domain.Category(category)
		st.Created = time.Unix(0, created).UTC()
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(apperror.CodeStorageError, "iterate pending", err)
	}
	return out, nil
}

// SavePending replaces the table contents with pending.
func (s *Store) SavePending(ctx context.Context, pending []domain.Settlement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Internal(apperror.CodeStorageError, "begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_settlements`); err != nil {
		return apperror.Internal(apperror.CodeStorageError, "clear pending", err)
	}
	for _, st := range pending {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pending_settlements (offer_id, partner, category, units, created_at) VALUES (?, ?, ?, ?, ?)`,
			st.OfferID, st.Partner.String(), string(st.Category), st.Units, st.Created.UnixNano()); err != nil {
			return apperror.Internal(apperror.CodeStorageError, "insert "+st.OfferID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperror.Internal(apperror.CodeStorageError, "commit", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
