package repositories

import (
	"context"
	"fmt"
	"net/netip"

	"gorm.io/gorm"

	"regiond/internal/bootmethods"
	"regiond/internal/errs"
	"regiond/internal/filters"
	"regiond/internal/models"
	"regiond/internal/netutil"
)

type SubnetBuilder struct{ ResourceBuilder }

func NewSubnetBuilder() *SubnetBuilder { return &SubnetBuilder{} }

func (b *SubnetBuilder) WithName(name string) *SubnetBuilder {
	b.set("name", name)
	return b
}

func (b *SubnetBuilder) WithDescription(d string) *SubnetBuilder {
	b.set("description", d)
	return b
}

// WithCIDR stores the masked network, so 10.0.0.1/24 becomes 10.0.0.0/24.
func (b *SubnetBuilder) WithCIDR(cidr string) *SubnetBuilder {
	p, err := netutil.ParseCIDR(cidr)
	if err != nil {
		b.invalid("%v", err)
		return b
	}
	b.set("cidr", p.String())
	return b
}

func (b *SubnetBuilder) WithRDNSMode(m models.RDNSMode) *SubnetBuilder {
	if m < models.RDNSModeDisabled || m > models.RDNSModeRFC2317 {
		b.invalid("unknown rdns mode %d", m)
	}
	b.set("rdns_mode", m)
	return b
}

func (b *SubnetBuilder) WithGatewayIP(ip *string) *SubnetBuilder {
	if ip == nil || *ip == "" {
		b.set("gateway_ip", (*string)(nil))
		return b
	}
	a, err := netutil.ParseIP(*ip)
	if err != nil {
		b.invalid("%v", err)
		return b
	}
	s := a.String()
	b.set("gateway_ip", &s)
	return b
}

func (b *SubnetBuilder) WithDNSServers(servers []string) *SubnetBuilder {
	out := make(models.StringList, 0, len(servers))
	for _, s := range servers {
		a, err := netutil.ParseIP(s)
		if err != nil {
			b.invalid("%v", err)
			continue
		}
		out = append(out, a.String())
	}
	b.set("dns_servers", out)
	return b
}

func (b *SubnetBuilder) WithAllowDNS(on bool) *SubnetBuilder {
	b.set("allow_dns", on)
	return b
}

func (b *SubnetBuilder) WithAllowProxy(on bool) *SubnetBuilder {
	b.set("allow_proxy", on)
	return b
}

func (b *SubnetBuilder) WithActiveDiscovery(on bool) *SubnetBuilder {
	b.set("active_discovery", on)
	return b
}

func (b *SubnetBuilder) WithManaged(on bool) *SubnetBuilder {
	b.set("managed", on)
	return b
}

// WithDisabledBootArchitectures accepts boot method names or arch octets.
func (b *SubnetBuilder) WithDisabledBootArchitectures(archs []string) *SubnetBuilder {
	names, err := bootmethods.Normalize(archs)
	if err != nil {
		b.invalid("%v", err)
		return b
	}
	b.set("disabled_boot_architectures", models.StringList(names))
	return b
}

func (b *SubnetBuilder) WithVLANID(id int) *SubnetBuilder {
	b.set("vlan_id", id)
	return b
}

type SubnetsRepository struct {
	*Repository[models.Subnet]
}

func NewSubnetsRepository(db *gorm.DB) *SubnetsRepository {
	return &SubnetsRepository{NewRepository[models.Subnet](db)}
}

type subnetCandidate struct {
	models.Subnet
	VLANDHCPOn bool `gorm:"column:vlan_dhcp_on"`
}

// FindBestSubnetForIP returns the subnet containing ip, preferring subnets
// on DHCP-enabled VLANs and then the longest prefix. Ties go to the lowest
// id. Nil when no subnet contains ip. Containment is strict, as postgres
// `>>`: a /32 or /128 subnet never matches its own address.
func (r *SubnetsRepository) FindBestSubnetForIP(ctx context.Context, ip netip.Addr) (*models.Subnet, error) {
	ip = ip.Unmap()
	tx := r.conn(ctx).Table(models.SubnetsTable).
		Select("subnets.*, vlans.dhcp_on AS vlan_dhcp_on").
		Joins("JOIN vlans ON " + filters.SubnetToVLAN.On)
	if r.db.Dialector.Name() == "postgres" {
		tx = tx.Where("subnets.cidr::cidr >> ?::inet", ip.String()).
			Order("vlans.dhcp_on DESC").
			Order("masklen(subnets.cidr::cidr) DESC")
	}
	var rows []subnetCandidate
	if err := tx.Order("subnets.id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find subnet for %s: %w", ip, err)
	}

	var (
		best     *subnetCandidate
		bestBits int
	)
	for i := range rows {
		p, err := netutil.ParseCIDR(rows[i].CIDR)
		if err != nil || !p.Contains(ip) || p.IsSingleIP() {
			continue
		}
		c := &rows[i]
		if best == nil ||
			(c.VLANDHCPOn && !best.VLANDHCPOn) ||
			(c.VLANDHCPOn == best.VLANDHCPOn && p.Bits() > bestBits) {
			best, bestBits = c, p.Bits()
		}
	}
	if best == nil {
		return nil, nil
	}
	out := best.Subnet
	return &out, nil
}

// preDeleteCheck refuses to drop subnets that still serve a dynamic range
// on a DHCP-enabled VLAN.
func (r *SubnetsRepository) preDeleteCheck(ctx context.Context, q filters.QuerySpec) error {
	busy := filters.NewClause("vlans.dhcp_on = ? AND ipranges.type = ?",
		[]any{true, models.IPRangeTypeDynamic},
		filters.SubnetToVLAN, filters.IPRangeToSubnet,
	)
	found, err := r.Exists(ctx, q.And(busy))
	if err != nil {
		return err
	}
	if found {
		return errs.PreconditionFailed("Cannot delete a subnet that is actively servicing a dynamic IP range. (Delete the dynamic range or disable DHCP first.)")
	}
	return nil
}

func (r *SubnetsRepository) DeleteByID(ctx context.Context, id int) (*models.Subnet, error) {
	return r.DeleteOne(ctx, filters.Query(filters.SubnetClauses.WithID(id)))
}

func (r *SubnetsRepository) DeleteOne(ctx context.Context, q filters.QuerySpec) (*models.Subnet, error) {
	s, err := r.GetOne(ctx, q)
	if err != nil || s == nil {
		return nil, err
	}
	byID := filters.Query(filters.SubnetClauses.WithID(s.ID))
	if err := r.preDeleteCheck(ctx, byID); err != nil {
		return nil, err
	}
	return r.Repository.DeleteOne(ctx, byID)
}

func (r *SubnetsRepository) DeleteMany(ctx context.Context, q filters.QuerySpec) ([]models.Subnet, error) {
	if err := r.preDeleteCheck(ctx, q); err != nil {
		return nil, err
	}
	return r.Repository.DeleteMany(ctx, q)
}
