package services

import (
	"context"
	"net/netip"
	"sort"

	"regiond/internal/errs"
	"regiond/internal/filters"
	"regiond/internal/models"
	"regiond/internal/netutil"
	"regiond/internal/repositories"
	"regiond/internal/workflow"
)

type StaticIPAddressService struct {
	*BaseService[models.StaticIPAddress]
	NoopHooks[models.StaticIPAddress]

	repo      *repositories.StaticIPAddressRepository
	subnets   *repositories.SubnetsRepository
	ranges    *repositories.IPRangesRepository
	reserved  *repositories.ReservedIPsRepository
	workflows workflow.Registrar
}

func NewStaticIPAddressService(
	repo *repositories.StaticIPAddressRepository,
	subnets *repositories.SubnetsRepository,
	ranges *repositories.IPRangesRepository,
	reserved *repositories.ReservedIPsRepository,
	workflows workflow.Registrar,
) *StaticIPAddressService {
	s := &StaticIPAddressService{repo: repo, subnets: subnets, ranges: ranges, reserved: reserved, workflows: workflows}
	s.BaseService = NewBaseService[models.StaticIPAddress](repo, s)
	return s
}

// configure registers a DHCP update unless the address was only observed
// on the network.
func (s *StaticIPAddressService) configure(ip models.StaticIPAddress, param workflow.ConfigureDHCPParam) {
	if ip.AllocType == models.IPAddressTypeDiscovered {
		return
	}
	workflow.ConfigureDHCP(s.workflows, param)
}

func (s *StaticIPAddressService) PostCreate(_ context.Context, ip models.StaticIPAddress) error {
	s.configure(ip, workflow.ConfigureDHCPParam{StaticIPAddrIDs: []int{ip.ID}})
	return nil
}

func (s *StaticIPAddressService) PostUpdate(_ context.Context, _, updated models.StaticIPAddress) error {
	s.configure(updated, workflow.ConfigureDHCPParam{StaticIPAddrIDs: []int{updated.ID}})
	return nil
}

func (s *StaticIPAddressService) PostUpdateMany(ctx context.Context, updated []models.StaticIPAddress) error {
	for _, ip := range updated {
		s.configure(ip, workflow.ConfigureDHCPParam{StaticIPAddrIDs: []int{ip.ID}})
	}
	return nil
}

// PostDelete reports the parent subnet since the row is gone.
func (s *StaticIPAddressService) PostDelete(_ context.Context, deleted models.StaticIPAddress) error {
	s.configure(deleted, workflow.ConfigureDHCPParam{SubnetIDs: []int{deleted.SubnetID}})
	return nil
}

func (s *StaticIPAddressService) PostDeleteMany(_ context.Context, deleted []models.StaticIPAddress) error {
	for _, ip := range deleted {
		s.configure(ip, workflow.ConfigureDHCPParam{SubnetIDs: []int{ip.SubnetID}})
	}
	return nil
}

// CreateOrUpdate upserts by ip and registers the DHCP update either way.
func (s *StaticIPAddressService) CreateOrUpdate(ctx context.Context, res repositories.Resource) (*models.StaticIPAddress, error) {
	ip, _, err := s.repo.CreateOrUpdate(ctx, res)
	if err != nil {
		return nil, err
	}
	s.configure(*ip, workflow.ConfigureDHCPParam{StaticIPAddrIDs: []int{ip.ID}})
	return ip, nil
}

// AllocateNext assigns the lowest free host address of the subnet. The
// gateway, every IP range, reserved IPs and assigned static addresses are
// never handed out.
func (s *StaticIPAddressService) AllocateNext(ctx context.Context, subnetID int, allocType models.IPAddressType) (*models.StaticIPAddress, error) {
	subnet, err := s.subnets.GetByID(ctx, subnetID)
	if err != nil {
		return nil, err
	}
	if subnet == nil {
		return nil, errs.NotFound("Subnet %d does not exist.", subnetID)
	}
	prefix, err := netutil.ParseCIDR(subnet.CIDR)
	if err != nil {
		return nil, err
	}

	busy, err := s.busyIntervals(ctx, *subnet)
	if err != nil {
		return nil, err
	}
	first, last := netutil.HostBounds(prefix)
	addr, ok := firstFree(first, last, busy)
	if !ok {
		return nil, errs.Conflict("No more IPs available in subnet %s.", subnet.CIDR)
	}

	ip := addr.String()
	res, err := repositories.NewStaticIPAddressBuilder().
		WithIP(&ip).
		WithAllocType(allocType).
		WithSubnetID(subnet.ID).
		Build()
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, res)
}

type interval struct{ start, end netip.Addr }

func (s *StaticIPAddressService) busyIntervals(ctx context.Context, subnet models.Subnet) ([]interval, error) {
	var busy []interval
	single := func(raw string) {
		if a, err := netutil.ParseIP(raw); err == nil {
			busy = append(busy, interval{a, a})
		}
	}

	if subnet.GatewayIP != nil {
		single(*subnet.GatewayIP)
	}
	ranges, err := s.ranges.GetMany(ctx, filters.Query(filters.IPRangeClauses.WithSubnetID(subnet.ID)))
	if err != nil {
		return nil, err
	}
	for _, r := range ranges {
		start, err1 := netutil.ParseIP(r.StartIP)
		end, err2 := netutil.ParseIP(r.EndIP)
		if err1 == nil && err2 == nil {
			busy = append(busy, interval{start, end})
		}
	}
	reserved, err := s.reserved.GetMany(ctx, filters.Query(filters.ReservedIPClauses.WithSubnetID(subnet.ID)))
	if err != nil {
		return nil, err
	}
	for _, r := range reserved {
		single(r.IP)
	}
	used, err := s.repo.GetUsedIPs(ctx, subnet.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range used {
		busy = append(busy, interval{a, a})
	}
	return busy, nil
}

// firstFree walks the busy intervals in address order, jumping over each
// one, so large IPv6 subnets are not scanned address by address.
func firstFree(first, last netip.Addr, busy []interval) (netip.Addr, bool) {
	sort.Slice(busy, func(i, j int) bool { return busy[i].start.Less(busy[j].start) })
	cur := first
	for _, iv := range busy {
		if iv.start.BitLen() != cur.BitLen() {
			continue
		}
		if cur.Less(iv.start) {
			break
		}
		if !iv.end.Less(cur) {
			cur = iv.end.Next()
			if !cur.IsValid() {
				return netip.Addr{}, false
			}
		}
	}
	if last.Less(cur) {
		return netip.Addr{}, false
	}
	return cur, true
}
