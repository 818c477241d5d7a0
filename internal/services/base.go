// Package services layers business rules over the repositories: etag
// checks, hooks that run around every mutation, per-unit caches and the
// DHCP workflow registrations that follow address changes.
package services

import (
	"context"

	"regiond/internal/errs"
	"regiond/internal/filters"
	"regiond/internal/models"
	"regiond/internal/repositories"
)

// Repository is what BaseService needs from a repository.
type Repository[T models.Model] interface {
	GetByID(ctx context.Context, id int) (*T, error)
	GetOne(ctx context.Context, q filters.QuerySpec) (*T, error)
	GetMany(ctx context.Context, q filters.QuerySpec) ([]T, error)
	Exists(ctx context.Context, q filters.QuerySpec) (bool, error)
	List(ctx context.Context, token string, size int, q filters.QuerySpec) (models.ListResult[T], error)
	Create(ctx context.Context, res repositories.Resource) (*T, error)
	UpdateByID(ctx context.Context, id int, res repositories.Resource) (*T, error)
	UpdateMany(ctx context.Context, q filters.QuerySpec, res repositories.Resource) ([]T, error)
	DeleteByID(ctx context.Context, id int) (*T, error)
	DeleteMany(ctx context.Context, q filters.QuerySpec) ([]T, error)
}

// Hooks run around the mutations of BaseService. Pre hooks validate and
// may abort; post hooks see the persisted rows.
type Hooks[T models.Model] interface {
	PreCreate(ctx context.Context, res repositories.Resource) error
	PostCreate(ctx context.Context, created T) error
	PreUpdate(ctx context.Context, existing T, res repositories.Resource) error
	PostUpdate(ctx context.Context, old, updated T) error
	PostUpdateMany(ctx context.Context, updated []T) error
	PreDelete(ctx context.Context, existing T) error
	PostDelete(ctx context.Context, deleted T) error
	PostDeleteMany(ctx context.Context, deleted []T) error
}

// NoopHooks is embedded by services that override only some hooks.
type NoopHooks[T models.Model] struct{}

func (NoopHooks[T]) PreCreate(context.Context, repositories.Resource) error { return nil }

func (NoopHooks[T]) PostCreate(context.Context, T) error { return nil }

func (NoopHooks[T]) PreUpdate(context.Context, T, repositories.Resource) error { return nil }

func (NoopHooks[T]) PostUpdate(context.Context, T, T) error { return nil }

func (NoopHooks[T]) PostUpdateMany(context.Context, []T) error { return nil }

func (NoopHooks[T]) PreDelete(context.Context, T) error { return nil }

func (NoopHooks[T]) PostDelete(context.Context, T) error { return nil }

func (NoopHooks[T]) PostDeleteMany(context.Context, []T) error { return nil }

// BaseService implements CRUD with optimistic concurrency and hooks.
type BaseService[T models.Model] struct {
	repo  Repository[T]
	hooks Hooks[T]
}

func NewBaseService[T models.Model](repo Repository[T], hooks Hooks[T]) *BaseService[T] {
	if hooks == nil {
		hooks = NoopHooks[T]{}
	}
	return &BaseService[T]{repo: repo, hooks: hooks}
}

func (s *BaseService[T]) GetByID(ctx context.Context, id int) (*T, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *BaseService[T]) GetOne(ctx context.Context, q filters.QuerySpec) (*T, error) {
	return s.repo.GetOne(ctx, q)
}

func (s *BaseService[T]) GetMany(ctx context.Context, q filters.QuerySpec) ([]T, error) {
	return s.repo.GetMany(ctx, q)
}

func (s *BaseService[T]) Exists(ctx context.Context, q filters.QuerySpec) (bool, error) {
	return s.repo.Exists(ctx, q)
}

func (s *BaseService[T]) List(ctx context.Context, token string, size int, q filters.QuerySpec) (models.ListResult[T], error) {
	return s.repo.List(ctx, token, size, q)
}

func (s *BaseService[T]) Create(ctx context.Context, res repositories.Resource) (*T, error) {
	if err := s.hooks.PreCreate(ctx, res); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, res)
	if err != nil {
		return nil, err
	}
	if err := s.hooks.PostCreate(ctx, *created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateByID fails with NotFound when id does not exist and with
// PreconditionFailed when etagIfMatch is set and stale.
func (s *BaseService[T]) UpdateByID(ctx context.Context, id int, res repositories.Resource, etagIfMatch string) (*T, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errs.NotFound("Resource with such identifiers does not exist.")
	}
	return s.update(ctx, *existing, res, etagIfMatch)
}

func (s *BaseService[T]) UpdateOne(ctx context.Context, q filters.QuerySpec, res repositories.Resource, etagIfMatch string) (*T, error) {
	existing, err := s.repo.GetOne(ctx, q)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errs.NotFound("Resource with such identifiers does not exist.")
	}
	return s.update(ctx, *existing, res, etagIfMatch)
}

func (s *BaseService[T]) update(ctx context.Context, existing T, res repositories.Resource, etagIfMatch string) (*T, error) {
	if err := checkEtag(existing, etagIfMatch); err != nil {
		return nil, err
	}
	if err := s.hooks.PreUpdate(ctx, existing, res); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateByID(ctx, existing.GetID(), res)
	if err != nil {
		return nil, err
	}
	if err := s.hooks.PostUpdate(ctx, existing, *updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateMany runs PreUpdate for every matching row before writing.
func (s *BaseService[T]) UpdateMany(ctx context.Context, q filters.QuerySpec, res repositories.Resource) ([]T, error) {
	rows, err := s.repo.GetMany(ctx, q)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	for _, row := range rows {
		if err := s.hooks.PreUpdate(ctx, row, res); err != nil {
			return nil, err
		}
	}
	updated, err := s.repo.UpdateMany(ctx, q, res)
	if err != nil {
		return nil, err
	}
	if err := s.hooks.PostUpdateMany(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteByID returns nil, nil when id does not exist.
func (s *BaseService[T]) DeleteByID(ctx context.Context, id int, etagIfMatch string) (*T, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}
	return s.delete(ctx, *existing, etagIfMatch)
}

func (s *BaseService[T]) DeleteOne(ctx context.Context, q filters.QuerySpec, etagIfMatch string) (*T, error) {
	existing, err := s.repo.GetOne(ctx, q)
	if err != nil || existing == nil {
		return nil, err
	}
	return s.delete(ctx, *existing, etagIfMatch)
}

func (s *BaseService[T]) delete(ctx context.Context, existing T, etagIfMatch string) (*T, error) {
	if err := checkEtag(existing, etagIfMatch); err != nil {
		return nil, err
	}
	if err := s.hooks.PreDelete(ctx, existing); err != nil {
		return nil, err
	}
	deleted, err := s.repo.DeleteByID(ctx, existing.GetID())
	if err != nil || deleted == nil {
		return nil, err
	}
	if err := s.hooks.PostDelete(ctx, *deleted); err != nil {
		return nil, err
	}
	return deleted, nil
}

// DeleteMany runs PreDelete for every matching row before deleting them.
func (s *BaseService[T]) DeleteMany(ctx context.Context, q filters.QuerySpec) ([]T, error) {
	rows, err := s.repo.GetMany(ctx, q)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	for _, row := range rows {
		if err := s.hooks.PreDelete(ctx, row); err != nil {
			return nil, err
		}
	}
	deleted, err := s.repo.DeleteMany(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return deleted, nil
	}
	if err := s.hooks.PostDeleteMany(ctx, deleted); err != nil {
		return nil, err
	}
	return deleted, nil
}

func checkEtag[T models.Model](m T, etagIfMatch string) error {
	if etagIfMatch == "" {
		return nil
	}
	if current := m.Etag(); current != etagIfMatch {
		return errs.EtagMismatch(current, etagIfMatch)
	}
	return nil
}
