package repositories

import (
	"context"
	"net/netip"

	"gorm.io/gorm"

	"regiond/internal/filters"
	"regiond/internal/models"
	"regiond/internal/netutil"
)

type IPRangeBuilder struct{ ResourceBuilder }

func NewIPRangeBuilder() *IPRangeBuilder { return &IPRangeBuilder{} }

func (b *IPRangeBuilder) WithType(t models.IPRangeType) *IPRangeBuilder {
	if !t.Valid() {
		b.invalid("unknown ip range type %q", t)
	}
	b.set("type", t)
	return b
}

func (b *IPRangeBuilder) WithStartIP(ip string) *IPRangeBuilder {
	return b.withAddr("start_ip", ip)
}

func (b *IPRangeBuilder) WithEndIP(ip string) *IPRangeBuilder {
	return b.withAddr("end_ip", ip)
}

func (b *IPRangeBuilder) withAddr(col, ip string) *IPRangeBuilder {
	a, err := netutil.ParseIP(ip)
	if err != nil {
		b.invalid("%v", err)
		return b
	}
	b.set(col, a.String())
	return b
}

func (b *IPRangeBuilder) WithComment(c string) *IPRangeBuilder {
	b.set("comment", c)
	return b
}

func (b *IPRangeBuilder) WithSubnetID(id int) *IPRangeBuilder {
	b.set("subnet_id", id)
	return b
}

type IPRangesRepository struct {
	*Repository[models.IPRange]
}

func NewIPRangesRepository(db *gorm.DB) *IPRangesRepository {
	return &IPRangesRepository{NewRepository[models.IPRange](db)}
}

// GetDynamicRangeForIP returns the first range of subnet, by id, whose
// bounds include ip. Nil when ip is in none of them.
func (r *IPRangesRepository) GetDynamicRangeForIP(ctx context.Context, subnet models.Subnet, ip netip.Addr) (*models.IPRange, error) {
	ranges, err := r.GetMany(ctx, filters.Query(filters.NewClause(
		"subnets.id = ?", []any{subnet.ID}, filters.IPRangeToSubnet,
	)))
	if err != nil {
		return nil, err
	}
	ip = ip.Unmap()
	for _, rg := range ranges {
		start, err1 := netutil.ParseIP(rg.StartIP)
		end, err2 := netutil.ParseIP(rg.EndIP)
		if err1 != nil || err2 != nil {
			continue
		}
		if netutil.InRange(ip, start, end) {
			return &rg, nil
		}
	}
	return nil, nil
}

// GetOverlapping lists the ranges of a subnet sharing at least one address
// with [start, end]. The range with id excludeID is ignored.
func (r *IPRangesRepository) GetOverlapping(ctx context.Context, subnetID int, start, end netip.Addr, excludeID int) ([]models.IPRange, error) {
	q := filters.Query(filters.IPRangeClauses.WithSubnetID(subnetID))
	if excludeID != 0 {
		q = q.And(filters.Where("ipranges.id <> ?", excludeID))
	}
	ranges, err := r.GetMany(ctx, q)
	if err != nil {
		return nil, err
	}
	var out []models.IPRange
	for _, rg := range ranges {
		s, err1 := netutil.ParseIP(rg.StartIP)
		e, err2 := netutil.ParseIP(rg.EndIP)
		if err1 != nil || err2 != nil {
			continue
		}
		if netutil.Overlaps(start, end, s, e) {
			out = append(out, rg)
		}
	}
	return out, nil
}
