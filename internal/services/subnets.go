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

type SubnetsService struct {
	*BaseService[models.Subnet]
	NoopHooks[models.Subnet]

	repo      *repositories.SubnetsRepository
	vlans     *repositories.VLANsRepository
	ranges    *repositories.IPRangesRepository
	reserved  *repositories.ReservedIPsRepository
	static    *repositories.StaticIPAddressRepository
	workflows workflow.Registrar
}

func NewSubnetsService(
	repo *repositories.SubnetsRepository,
	vlans *repositories.VLANsRepository,
	ranges *repositories.IPRangesRepository,
	reserved *repositories.ReservedIPsRepository,
	static *repositories.StaticIPAddressRepository,
	workflows workflow.Registrar,
) *SubnetsService {
	s := &SubnetsService{repo: repo, vlans: vlans, ranges: ranges, reserved: reserved, static: static, workflows: workflows}
	s.BaseService = NewBaseService[models.Subnet](repo, s)
	return s
}

// FindBestSubnetForIP prefers subnets on DHCP-enabled VLANs, then the
// most specific prefix.
func (s *SubnetsService) FindBestSubnetForIP(ctx context.Context, ip netip.Addr) (*models.Subnet, error) {
	return s.repo.FindBestSubnetForIP(ctx, ip)
}

func (s *SubnetsService) PreCreate(ctx context.Context, res repositories.Resource) error {
	cidr, ok := res["cidr"].(string)
	if !ok {
		return errs.Validation("cidr is required")
	}
	vlanID, ok := res["vlan_id"].(int)
	if !ok {
		return errs.Validation("vlan_id is required")
	}
	if err := s.checkVLAN(ctx, vlanID); err != nil {
		return err
	}
	gw, _ := res["gateway_ip"].(*string)
	return checkGateway(cidr, gw)
}

func (s *SubnetsService) PreUpdate(ctx context.Context, existing models.Subnet, res repositories.Resource) error {
	if vlanID, ok := res["vlan_id"].(int); ok {
		if err := s.checkVLAN(ctx, vlanID); err != nil {
			return err
		}
	}
	cidr := existing.CIDR
	if v, ok := res["cidr"].(string); ok {
		cidr = v
	}
	gw := existing.GatewayIP
	if v, ok := res["gateway_ip"]; ok {
		gw, _ = v.(*string)
	}
	if err := checkGateway(cidr, gw); err != nil {
		return err
	}
	if cidr != existing.CIDR {
		return s.checkAddressesWithin(ctx, existing.ID, cidr)
	}
	return nil
}

// checkAddressesWithin requires the IP ranges, reserved IPs and assigned
// static addresses of the subnet to fit in cidr.
func (s *SubnetsService) checkAddressesWithin(ctx context.Context, subnetID int, cidr string) error {
	prefix, err := netutil.ParseCIDR(cidr)
	if err != nil {
		return errs.Validation("%v", err)
	}
	inside := func(raw string) bool {
		a, err := netutil.ParseIP(raw)
		return err == nil && prefix.Contains(a)
	}

	ranges, err := s.ranges.GetMany(ctx, filters.Query(filters.IPRangeClauses.WithSubnetID(subnetID)))
	if err != nil {
		return err
	}
	for _, r := range ranges {
		if !inside(r.StartIP) || !inside(r.EndIP) {
			return errs.Validation("The IP range %s - %s would fall outside subnet %s.", r.StartIP, r.EndIP, cidr)
		}
	}
	reserved, err := s.reserved.GetMany(ctx, filters.Query(filters.ReservedIPClauses.WithSubnetID(subnetID)))
	if err != nil {
		return err
	}
	for _, r := range reserved {
		if !inside(r.IP) {
			return errs.Validation("The reserved ip %s would fall outside subnet %s.", r.IP, cidr)
		}
	}
	used, err := s.static.GetUsedIPs(ctx, subnetID)
	if err != nil {
		return err
	}
	for _, a := range used {
		if !prefix.Contains(a) {
			return errs.Validation("The static ip %s would fall outside subnet %s.", a, cidr)
		}
	}
	return nil
}

func (s *SubnetsService) checkVLAN(ctx context.Context, id int) error {
	v, err := s.vlans.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if v == nil {
		return errs.Validation("vlan %d does not exist", id)
	}
	return nil
}

func checkGateway(cidr string, gw *string) error {
	if gw == nil {
		return nil
	}
	if !netutil.Contains(cidr, *gw) {
		return errs.Validation("gateway ip %s must be within subnet %s", *gw, cidr)
	}
	return nil
}

func (s *SubnetsService) PostCreate(_ context.Context, subnet models.Subnet) error {
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{SubnetIDs: []int{subnet.ID}})
	return nil
}

func (s *SubnetsService) PostUpdate(_ context.Context, _, updated models.Subnet) error {
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{SubnetIDs: []int{updated.ID}})
	return nil
}

func (s *SubnetsService) PostUpdateMany(_ context.Context, updated []models.Subnet) error {
	if len(updated) > 0 {
		workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{SubnetIDs: subnetIDs(updated)})
	}
	return nil
}

// PostDelete reports the parent VLAN since the subnet id no longer resolves.
func (s *SubnetsService) PostDelete(_ context.Context, deleted models.Subnet) error {
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{VLANIDs: []int{deleted.VLANID}})
	return nil
}

func (s *SubnetsService) PostDeleteMany(_ context.Context, deleted []models.Subnet) error {
	ids := make([]int, 0, len(deleted))
	for _, d := range deleted {
		ids = append(ids, d.VLANID)
	}
	workflow.ConfigureDHCP(s.workflows, workflow.ConfigureDHCPParam{VLANIDs: ids})
	return nil
}

func subnetIDs(subnets []models.Subnet) []int {
	ids := make([]int, 0, len(subnets))
	for _, s := range subnets {
		ids = append(ids, s.ID)
	}
	return ids
}
