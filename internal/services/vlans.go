package services

import (
	"context"

	"regiond/internal/errs"
	"regiond/internal/models"
	"regiond/internal/repositories"
	"regiond/internal/workflow"
)

type VLANsService struct {
	*BaseService[models.VLAN]
	NoopHooks[models.VLAN]

	repo      *repositories.VLANsRepository
	fabrics   *repositories.FabricsRepository
	workflows workflow.Registrar
}

func NewVLANsService(repo *repositories.VLANsRepository, fabrics *repositories.FabricsRepository, workflows workflow.Registrar) *VLANsService {
	s := &VLANsService{repo: repo, fabrics: fabrics, workflows: workflows}
	s.BaseService = NewBaseService[models.VLAN](repo, s)
	return s
}

func (s *VLANsService) PreCreate(ctx context.Context, res repositories.Resource) error {
	id, ok := res["fabric_id"].(int)
	if !ok {
		return errs.Validation("fabric_id is required")
	}
	return s.checkFabric(ctx, id)
}

func (s *VLANsService) PreUpdate(ctx context.Context, _ models.VLAN, res repositories.Resource) error {
	if id, ok := res["fabric_id"].(int); ok {
		return s.checkFabric(ctx, id)
	}
	return nil
}

func (s *VLANsService) checkFabric(ctx context.Context, id int) error {
	f, err := s.fabrics.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if f == nil {
		return errs.Validation("fabric %d does not exist", id)
	}
	return nil
}

func (s *VLANsService) PostCreate(_ context.Context, v models.VLAN) error {
	if v.DHCPOn {
		workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{VLANIDs: []int{v.ID}})
	}
	return nil
}

// PostUpdate reconfigures DHCP only when a DHCP relevant field changed.
func (s *VLANsService) PostUpdate(_ context.Context, old, updated models.VLAN) error {
	if old.DHCPOn != updated.DHCPOn || old.MTU != updated.MTU || !sameRelay(old.RelayVLANID, updated.RelayVLANID) {
		workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{VLANIDs: []int{updated.ID}})
	}
	return nil
}

func (s *VLANsService) PostUpdateMany(_ context.Context, updated []models.VLAN) error {
	if len(updated) == 0 {
		return nil
	}
	ids := make([]int, 0, len(updated))
	for _, v := range updated {
		ids = append(ids, v.ID)
	}
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{VLANIDs: ids})
	return nil
}

func sameRelay(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
