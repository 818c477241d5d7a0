package services

import (
	"context"

	"regiond/internal/errs"
	"regiond/internal/models"
	"regiond/internal/netutil"
	"regiond/internal/repositories"
	"regiond/internal/workflow"
)

type ReservedIPsService struct {
	*BaseService[models.ReservedIP]
	NoopHooks[models.ReservedIP]

	repo      *repositories.ReservedIPsRepository
	subnets   *repositories.SubnetsRepository
	ranges    *repositories.IPRangesRepository
	workflows workflow.Registrar
}

func NewReservedIPsService(
	repo *repositories.ReservedIPsRepository,
	subnets *repositories.SubnetsRepository,
	ranges *repositories.IPRangesRepository,
	workflows workflow.Registrar,
) *ReservedIPsService {
	s := &ReservedIPsService{repo: repo, subnets: subnets, ranges: ranges, workflows: workflows}
	s.BaseService = NewBaseService[models.ReservedIP](repo, s)
	return s
}

func (s *ReservedIPsService) PreCreate(ctx context.Context, res repositories.Resource) error {
	ip, _ := res["ip"].(string)
	subnetID, _ := res["subnet_id"].(int)
	if _, ok := res["mac_address"]; !ok || ip == "" || subnetID == 0 {
		return errs.Validation("ip, mac_address and subnet_id are required")
	}
	return s.validate(ctx, subnetID, ip)
}

func (s *ReservedIPsService) PreUpdate(ctx context.Context, existing models.ReservedIP, res repositories.Resource) error {
	ip, subnetID := existing.IP, existing.SubnetID
	if v, ok := res["ip"].(string); ok {
		ip = v
	}
	if v, ok := res["subnet_id"].(int); ok {
		subnetID = v
	}
	return s.validate(ctx, subnetID, ip)
}

// validate requires ip to be a host address of the subnet outside every
// dynamic range.
func (s *ReservedIPsService) validate(ctx context.Context, subnetID int, ip string) error {
	subnet, err := s.subnets.GetByID(ctx, subnetID)
	if err != nil {
		return err
	}
	if subnet == nil {
		return errs.Validation("subnet %d does not exist", subnetID)
	}
	addr, err := netutil.ParseIP(ip)
	if err != nil {
		return errs.Validation("%v", err)
	}
	prefix, err := netutil.ParseCIDR(subnet.CIDR)
	if err != nil {
		return err
	}
	first, last := netutil.HostBounds(prefix)
	if !netutil.InRange(addr, first, last) {
		return errs.Validation("The ip %s must be a host address of subnet %s.", ip, subnet.CIDR)
	}
	r, err := s.ranges.GetDynamicRangeForIP(ctx, *subnet, addr)
	if err != nil {
		return err
	}
	if r != nil && r.Type == models.IPRangeTypeDynamic {
		return errs.Validation("The ip %s must be outside the dynamic range %s - %s.", ip, r.StartIP, r.EndIP)
	}
	return nil
}

func (s *ReservedIPsService) PostCreate(_ context.Context, r models.ReservedIP) error {
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{ReservedIPIDs: []int{r.ID}})
	return nil
}

func (s *ReservedIPsService) PostUpdate(_ context.Context, _, updated models.ReservedIP) error {
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{ReservedIPIDs: []int{updated.ID}})
	return nil
}

func (s *ReservedIPsService) PostUpdateMany(_ context.Context, updated []models.ReservedIP) error {
	if len(updated) == 0 {
		return nil
	}
	ids := make([]int, 0, len(updated))
	for _, r := range updated {
		ids = append(ids, r.ID)
	}
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{ReservedIPIDs: ids})
	return nil
}

func (s *ReservedIPsService) PostDelete(_ context.Context, deleted models.ReservedIP) error {
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{SubnetIDs: []int{deleted.SubnetID}})
	return nil
}

func (s *ReservedIPsService) PostDeleteMany(_ context.Context, deleted []models.ReservedIP) error {
	ids := make([]int, 0, len(deleted))
	for _, r := range deleted {
		ids = append(ids, r.SubnetID)
	}
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{SubnetIDs: ids})
	return nil
}
