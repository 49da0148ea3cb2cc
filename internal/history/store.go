package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/aleister1102/metascope/internal/common/errorwrapper"
	"github.com/aleister1102/metascope/internal/config"
)

// Visit is one recorded page visit.
type Visit struct {
	ID        int64
	URL       string
	Host      string
	Title     string
	VisitedAt time.Time
}

// Store persists the shell's visit history in sqlite. Only navigation state
// is recorded; extracted metadata itself is never persisted.
type Store struct {
	db     *sql.DB
	cfg    *config.HistoryConfig
	logger zerolog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS visits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL,
	host TEXT NOT NULL,
	title TEXT NOT NULL,
	visited_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visits_visited_at ON visits (visited_at DESC);
`

// NewStore opens (or creates) the history database.
func NewStore(cfg *config.HistoryConfig, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to open history database '"+cfg.DatabasePath+"'")
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errorwrapper.WrapError(err, "failed to initialize history schema")
	}

	return &Store{
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "HistoryStore").Logger(),
	}, nil
}

// RecordVisit appends one visit and prunes beyond the retention cap.
func (s *Store) RecordVisit(ctx context.Context, url, host, title string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visits (url, host, title, visited_at) VALUES (?, ?, ?, ?)`,
		url, host, title, time.Now().UTC(),
	)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to record visit for "+url)
	}

	if s.cfg.MaxEntries > 0 {
		if err := s.prune(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("History pruning failed")
		}
	}
	return nil
}

func (s *Store) prune(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM visits WHERE id NOT IN (SELECT id FROM visits ORDER BY visited_at DESC, id DESC LIMIT ?)`,
		s.cfg.MaxEntries,
	)
	return err
}

// RecentVisits returns up to limit visits, newest first.
func (s *Store) RecentVisits(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, host, title, visited_at FROM visits ORDER BY visited_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to query recent visits")
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.URL, &v.Host, &v.Title, &v.VisitedAt); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to scan visit row")
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
