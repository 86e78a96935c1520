package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/inamate/artboard/internal/document"
)

const sqliteSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	display_name TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	thumbnail TEXT NOT NULL DEFAULT '',
	document TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_projects_owner_updated ON projects(owner_id, updated_at);
`

type SQLite struct {
	conn *sql.DB
	now  func() time.Time
}

// NewSQLite opens (or creates) the database file at path.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serialises writers.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{conn: conn, now: time.Now}, nil
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) CreateUser(ctx context.Context, u *User) error {
	u.CreatedAt = s.now().UTC()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password, display_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName, u.CreatedAt.Format(metaLayout),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *SQLite) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.user(ctx, `SELECT id, email, password, display_name, created_at FROM users WHERE email = ?`, email)
}

func (s *SQLite) UserByID(ctx context.Context, id string) (*User, error) {
	return s.user(ctx, `SELECT id, email, password, display_name, created_at FROM users WHERE id = ?`, id)
}

func (s *SQLite) user(ctx context.Context, query string, arg string) (*User, error) {
	var (
		u       User
		created string
	)
	err := s.conn.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt, err = time.Parse(metaLayout, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &u, nil
}

func (s *SQLite) Save(ctx context.Context, owner string, p *document.Project) error {
	c, data, err := stamp(p, s.now())
	if err != nil {
		return err
	}
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO projects (id, owner_id, name, category, thumbnail, document, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			thumbnail = excluded.thumbnail,
			document = excluded.document,
			updated_at = excluded.updated_at
		WHERE projects.owner_id = excluded.owner_id`,
		c.Meta.ID, owner, c.Meta.Name, c.Meta.Category, c.Meta.Thumbnail, string(data), c.Meta.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, owner string) ([]Summary, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, category, thumbnail, updated_at FROM projects
		WHERE owner_id = ? ORDER BY updated_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Category, &sum.Thumbnail, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

func (s *SQLite) Load(ctx context.Context, owner, id string) (*document.Project, error) {
	var data string
	err := s.conn.QueryRowContext(ctx,
		`SELECT document FROM projects WHERE id = ? AND owner_id = ?`, id, owner,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	return decode([]byte(data))
}

func (s *SQLite) Delete(ctx context.Context, owner, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
