package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/artboard/internal/document"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	display_name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	thumbnail TEXT NOT NULL DEFAULT '',
	document JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_owner_updated ON projects(owner_id, updated_at DESC);
`

type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgres connects to databaseURL and creates the tables when missing.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{pool: pool, now: time.Now}, nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

func (s *Postgres) CreateUser(ctx context.Context, u *User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password, display_name) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName,
	).Scan(&u.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Postgres) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.user(ctx, `SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`, email)
}

func (s *Postgres) UserByID(ctx context.Context, id string) (*User, error) {
	return s.user(ctx, `SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`, id)
}

func (s *Postgres) user(ctx context.Context, query string, arg string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Postgres) Save(ctx context.Context, owner string, p *document.Project) error {
	now := s.now()
	c, data, err := stamp(p, now)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO projects (id, owner_id, name, category, thumbnail, document, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			thumbnail = EXCLUDED.thumbnail,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
		WHERE projects.owner_id = EXCLUDED.owner_id`,
		c.Meta.ID, owner, c.Meta.Name, c.Meta.Category, c.Meta.Thumbnail, data, now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, owner string) ([]Summary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, category, thumbnail, updated_at FROM projects
		WHERE owner_id = $1 ORDER BY updated_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sum     Summary
			updated time.Time
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Category, &sum.Thumbnail, &updated); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		sum.UpdatedAt = updated.UTC().Format(metaLayout)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

func (s *Postgres) Load(ctx context.Context, owner, id string) (*document.Project, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM projects WHERE id = $1 AND owner_id = $2`, id, owner,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	return decode(data)
}

func (s *Postgres) Delete(ctx context.Context, owner, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
