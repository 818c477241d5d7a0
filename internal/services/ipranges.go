package services

import (
	"context"
	"net/netip"

	"regiond/internal/errs"
	"regiond/internal/filters"
	"regiond/internal/models"
	"regiond/internal/netutil"
	"regiond/internal/repositories"
	"regiond/internal/workflow"
)

type IPRangesService struct {
	*BaseService[models.IPRange]
	NoopHooks[models.IPRange]

	repo      *repositories.IPRangesRepository
	subnets   *repositories.SubnetsRepository
	snippets  *DHCPSnippetsService
	workflows workflow.Registrar
}

func NewIPRangesService(
	repo *repositories.IPRangesRepository,
	subnets *repositories.SubnetsRepository,
	snippets *DHCPSnippetsService,
	workflows workflow.Registrar,
) *IPRangesService {
	s := &IPRangesService{repo: repo, subnets: subnets, snippets: snippets, workflows: workflows}
	s.BaseService = NewBaseService[models.IPRange](repo, s)
	return s
}

// GetDynamicRangeForIP returns the first range of subnet containing ip.
func (s *IPRangesService) GetDynamicRangeForIP(ctx context.Context, subnet models.Subnet, ip netip.Addr) (*models.IPRange, error) {
	return s.repo.GetDynamicRangeForIP(ctx, subnet, ip)
}

func (s *IPRangesService) PreCreate(ctx context.Context, res repositories.Resource) error {
	var r models.IPRange
	if err := fillRange(&r, res); err != nil {
		return err
	}
	if r.Type == "" {
		return errs.Validation("type is required")
	}
	return s.validate(ctx, r)
}

func (s *IPRangesService) PreUpdate(ctx context.Context, existing models.IPRange, res repositories.Resource) error {
	r := existing
	if err := fillRange(&r, res); err != nil {
		return err
	}
	return s.validate(ctx, r)
}

func fillRange(r *models.IPRange, res repositories.Resource) error {
	if v, ok := res["type"].(models.IPRangeType); ok {
		r.Type = v
	}
	if v, ok := res["start_ip"].(string); ok {
		r.StartIP = v
	}
	if v, ok := res["end_ip"].(string); ok {
		r.EndIP = v
	}
	if v, ok := res["subnet_id"].(int); ok {
		r.SubnetID = v
	}
	if r.StartIP == "" || r.EndIP == "" || r.SubnetID == 0 {
		return errs.Validation("start_ip, end_ip and subnet_id are required")
	}
	return nil
}

// validate checks r against its subnet and the other ranges of the subnet.
// It runs in the transaction of the mutation.
func (s *IPRangesService) validate(ctx context.Context, r models.IPRange) error {
	start, err := netutil.ParseIP(r.StartIP)
	if err != nil {
		return errs.Validation("%v", err)
	}
	end, err := netutil.ParseIP(r.EndIP)
	if err != nil {
		return errs.Validation("%v", err)
	}
	if start.BitLen() != end.BitLen() {
		return errs.Validation("start_ip %s and end_ip %s must be in the same address family", start, end)
	}
	if end.Less(start) {
		return errs.Validation("end_ip %s must be greater than or equal to start_ip %s", end, start)
	}

	subnet, err := s.subnets.GetByID(ctx, r.SubnetID)
	if err != nil {
		return err
	}
	if subnet == nil {
		return errs.Validation("subnet %d does not exist", r.SubnetID)
	}
	prefix, err := netutil.ParseCIDR(subnet.CIDR)
	if err != nil {
		return err
	}
	if !prefix.Contains(start) || !prefix.Contains(end) {
		return errs.Validation("range %s-%s is not within subnet %s", start, end, subnet.CIDR)
	}

	overlapping, err := s.repo.GetOverlapping(ctx, r.SubnetID, start, end, r.ID)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		o := overlapping[0]
		return errs.Validation("Requested range %s-%s conflicts with an existing %s range %s-%s.",
			start, end, o.Type, o.StartIP, o.EndIP)
	}
	return nil
}

func (s *IPRangesService) PostCreate(_ context.Context, r models.IPRange) error {
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{IPRangeIDs: []int{r.ID}})
	return nil
}

func (s *IPRangesService) PostUpdate(_ context.Context, _, updated models.IPRange) error {
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{IPRangeIDs: []int{updated.ID}})
	return nil
}

func (s *IPRangesService) PostUpdateMany(_ context.Context, updated []models.IPRange) error {
	if len(updated) == 0 {
		return nil
	}
	ids := make([]int, 0, len(updated))
	for _, r := range updated {
		ids = append(ids, r.ID)
	}
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{IPRangeIDs: ids})
	return nil
}

// PreDelete drops the snippets attached to the range.
func (s *IPRangesService) PreDelete(ctx context.Context, r models.IPRange) error {
	_, err := s.snippets.DeleteMany(ctx, filters.Query(filters.DHCPSnippetClauses.WithIPRangeID(r.ID)))
	return err
}

func (s *IPRangesService) PostDelete(_ context.Context, deleted models.IPRange) error {
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{SubnetIDs: []int{deleted.SubnetID}})
	return nil
}

func (s *IPRangesService) PostDeleteMany(_ context.Context, deleted []models.IPRange) error {
	ids := make([]int, 0, len(deleted))
	for _, r := range deleted {
		ids = append(ids, r.SubnetID)
	}
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{SubnetIDs: ids})
	return nil
}
