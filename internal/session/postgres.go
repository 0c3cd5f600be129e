package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

// PostgresStore keeps sessions in a sessions table:
//
//	CREATE TABLE sessions (
//	    id         TEXT PRIMARY KEY,
//	    token      TEXT NOT NULL,
//	    username   TEXT NOT NULL,
//	    expires_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
//
// Unlike Redis there is no native TTL, so expired rows are removed by the
// Sweeper.
type PostgresStore struct {
	db  *sqlx.DB
	ttl time.Duration
}

type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	TTL          time.Duration
}

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 12 * time.Hour
	}

	return &PostgresStore{db: db, ttl: ttl}, nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

type sessionRow struct {
	Token    string `db:"token"`
	Username string `db:"username"`
}

func (p *PostgresStore) Get(ctx context.Context, id string) (Session, error) {
	var row sessionRow
	query := `SELECT token, username FROM sessions WHERE id = $1 AND expires_at > now()`
	err := p.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("reading session: %w", err)
	}
	return Session{Token: row.Token, Username: row.Username}, nil
}

func (p *PostgresStore) Set(ctx context.Context, id string, sess Session) error {
	query := `
		INSERT INTO sessions (id, token, username, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET token = EXCLUDED.token,
		    username = EXCLUDED.username,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	_, err := p.db.ExecContext(ctx, query, id, sess.Token, sess.Username, now.Add(p.ttl), now)
	if err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Clear(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Sweep removes sessions past their expiry and returns how many were removed.
func (p *PostgresStore) Sweep(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("sweeping sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Sweeper runs Sweep on a cron schedule.
type Sweeper struct {
	cron   *cron.Cron
	store  *PostgresStore
	logger *slog.Logger
}

func NewSweeper(store *PostgresStore, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		cron:   cron.New(),
		store:  store,
		logger: logger.With("component", "session_sweeper"),
	}
}

// Start registers the sweep job and starts the scheduler. schedule accepts
// cron expressions and descriptors such as "@every 10m".
func (s *Sweeper) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		removed, err := s.store.Sweep(ctx)
		if err != nil {
			s.logger.Error("session sweep failed", "error", err)
			return
		}
		if removed > 0 {
			s.logger.Info("swept expired sessions", "removed", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("registering sweep job: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
