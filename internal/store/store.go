// Package store persists users and projects. Postgres backs deployed servers; SQLite
// backs single-user installs and tests.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/artboard/internal/document"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

// metaLayout matches the ISO strings browsers produce. It has a fixed width, so it
// sorts lexically in chronological order.
const metaLayout = "2006-01-02T15:04:05.000Z"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

// Summary is the listing entry of a saved project.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Thumbnail string `json:"thumbnail,omitempty"`
	UpdatedAt string `json:"updatedAt"`
}

type Store interface {
	CreateUser(ctx context.Context, u *User) error
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)

	// Save inserts or replaces a project owned by owner and stamps its UpdatedAt.
	// Saving over another owner's project fails with ErrNotFound.
	Save(ctx context.Context, owner string, p *document.Project) error
	// List returns the owner's projects, most recently updated first.
	List(ctx context.Context, owner string) ([]Summary, error)
	Load(ctx context.Context, owner, id string) (*document.Project, error)
	Delete(ctx context.Context, owner, id string) error

	Close() error
}

// stamp returns a copy of p with fresh timestamps, and its encoded form.
func stamp(p *document.Project, now time.Time) (*document.Project, []byte, error) {
	if p.Meta.ID == "" {
		return nil, nil, fmt.Errorf("save project: %w: missing id", document.ErrInvalidProject)
	}
	c := *p
	c.Meta.UpdatedAt = now.UTC().Format(metaLayout)
	if c.Meta.CreatedAt == "" {
		c.Meta.CreatedAt = c.Meta.UpdatedAt
	}
	data, err := json.Marshal(&c)
	if err != nil {
		return nil, nil, fmt.Errorf("encode project: %w", err)
	}
	return &c, data, nil
}

func decode(data []byte) (*document.Project, error) {
	var p document.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	return &p, nil
}
