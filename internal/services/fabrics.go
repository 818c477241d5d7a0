package services

import (
	"context"

	"regiond/internal/errs"
	"regiond/internal/filters"
	"regiond/internal/models"
	"regiond/internal/repositories"
)

type FabricsService struct {
	*BaseService[models.Fabric]
	NoopHooks[models.Fabric]

	repo  *repositories.FabricsRepository
	cache *FabricsCache
}

func NewFabricsService(repo *repositories.FabricsRepository, cache *FabricsCache) *FabricsService {
	if cache == nil {
		cache = &FabricsCache{}
	}
	s := &FabricsService{repo: repo, cache: cache}
	s.BaseService = NewBaseService[models.Fabric](repo, s)
	return s
}

// GetDefaultFabric returns the fabric with the lowest id, or nil when no
// fabric exists.
func (s *FabricsService) GetDefaultFabric(ctx context.Context) (*models.Fabric, error) {
	return s.cache.DefaultFabric.GetOrCompute(ctx, func(ctx context.Context) (*models.Fabric, error) {
		return s.repo.GetOne(ctx, filters.QuerySpec{})
	})
}

func (s *FabricsService) PostCreate(context.Context, models.Fabric) error {
	s.cache.Clear()
	return nil
}

func (s *FabricsService) PreDelete(ctx context.Context, f models.Fabric) error {
	def, err := s.GetDefaultFabric(ctx)
	if err != nil {
		return err
	}
	if def != nil && def.ID == f.ID {
		return errs.PreconditionFailed("The default fabric (id %d) cannot be deleted.", f.ID)
	}
	return nil
}

func (s *FabricsService) PostDelete(context.Context, models.Fabric) error {
	s.cache.Clear()
	return nil
}

func (s *FabricsService) PostDeleteMany(context.Context, []models.Fabric) error {
	s.cache.Clear()
	return nil
}
