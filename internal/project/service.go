package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/store"
	"github.com/inamate/artboard/internal/typeid"
)

var (
	ErrNotFound = errors.New("project not found")
	ErrInvalid  = errors.New("invalid project")
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// CreateParams describes a new project. Zero sizes fall back to the default artboard.
type CreateParams struct {
	Name     string
	Category string
	Width    float64
	Height   float64
	Sample   bool
}

func (s *Service) Create(ctx context.Context, ownerID string, params CreateParams) (*document.Project, error) {
	projectID := typeid.NewProjectID()

	var p *document.Project
	if params.Sample {
		p = document.NewSampleProject(projectID)
		p.Meta.Name = params.Name
	} else {
		p = document.NewEmptyProject(projectID, params.Name)
	}
	if params.Category != "" {
		p.Meta.Category = params.Category
	}
	if params.Width > 0 {
		p.Canvas.Width = params.Width
	}
	if params.Height > 0 {
		p.Canvas.Height = params.Height
	}

	if err := s.store.Save(ctx, ownerID, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return s.Get(ctx, projectID, ownerID)
}

func (s *Service) Get(ctx context.Context, projectID, userID string) (*document.Project, error) {
	p, err := s.store.Load(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]store.Summary, error) {
	projects, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Save replaces the stored project. The id in the path wins over the one in the body.
func (s *Service) Save(ctx context.Context, projectID, userID string, p *document.Project) error {
	p.Meta.ID = projectID
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.store.Save(ctx, userID, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	if err := s.store.Delete(ctx, userID, projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
