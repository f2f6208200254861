// Package sqlite persists match snapshots and results on the host.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"werewolf/internal/domain"
	"werewolf/internal/storage/sqlite/migrations"
)

// ErrNotFound is returned when a game has no stored row.
var ErrNotFound = errors.New("not found")

// MatchResult is the stored outcome of a finished match.
type MatchResult struct {
	GameID     string
	Reason     domain.VictoryReason
	Side       domain.Side
	Winners    []string
	Rounds     int
	FinishedAt time.Time
}

// Store provides SQLite-backed match persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the store at path, creating the file and parent directory if
// needed, and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveSnapshot appends the full state of g, hidden roles included.
func (s *Store) SaveSnapshot(ctx context.Context, g *domain.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state, err := g.MarshalState()
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO match_snapshots (game_id, round, phase, state, created_at)
VALUES (?, ?, ?, ?, ?)
`,
		g.ID,
		g.Round,
		string(g.Phase),
		state,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", g.ID, err)
	}
	return nil
}

// LatestSnapshot restores the most recent state saved for gameID.
func (s *Store) LatestSnapshot(ctx context.Context, gameID string) (*domain.Game, error) {
	var state []byte
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT state
FROM match_snapshots
WHERE game_id = ?
ORDER BY id DESC
LIMIT 1
`, gameID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", gameID, err)
	}
	return domain.UnmarshalState(state)
}

// CountSnapshots returns how many snapshots were saved for gameID.
func (s *Store) CountSnapshots(ctx context.Context, gameID string) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM match_snapshots WHERE game_id = ?", gameID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots %s: %w", gameID, err)
	}
	return n, nil
}

// SaveResult records how a match ended. Saving twice keeps the first result.
func (s *Store) SaveResult(ctx context.Context, gameID string, v *domain.Victory, rounds int) error {
	if v == nil {
		return fmt.Errorf("save result %s: victory is required", gameID)
	}
	winners, err := json.Marshal(v.Winners)
	if err != nil {
		return fmt.Errorf("marshal winners: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT OR IGNORE INTO match_results (game_id, reason, side, winners, rounds, finished_at)
VALUES (?, ?, ?, ?, ?, ?)
`,
		gameID,
		string(v.Reason),
		string(v.Side),
		string(winners),
		rounds,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save result %s: %w", gameID, err)
	}
	return nil
}

// Result loads the stored outcome of gameID.
func (s *Store) Result(ctx context.Context, gameID string) (MatchResult, error) {
	var (
		r          MatchResult
		reason     string
		side       string
		winners    string
		finishedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT game_id, reason, side, winners, rounds, finished_at
FROM match_results
WHERE game_id = ?
`, gameID).Scan(&r.GameID, &reason, &side, &winners, &r.Rounds, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return MatchResult{}, fmt.Errorf("result %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return MatchResult{}, fmt.Errorf("load result %s: %w", gameID, err)
	}
	if err := json.Unmarshal([]byte(winners), &r.Winners); err != nil {
		return MatchResult{}, fmt.Errorf("decode winners %s: %w", gameID, err)
	}
	r.Reason = domain.VictoryReason(reason)
	r.Side = domain.Side(side)
	r.FinishedAt = time.UnixMilli(finishedAt).UTC()
	return r, nil
}

// CountResults returns how many matches have finished.
func (s *Store) CountResults(ctx context.Context) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM match_results").Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}
