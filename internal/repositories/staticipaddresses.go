package repositories

import (
	"context"
	"net/netip"
	"time"

	"gorm.io/gorm"

	"regiond/internal/filters"
	"regiond/internal/models"
	"regiond/internal/netutil"
)

type StaticIPAddressBuilder struct{ ResourceBuilder }

func NewStaticIPAddressBuilder() *StaticIPAddressBuilder { return &StaticIPAddressBuilder{} }

// WithIP accepts nil for addresses that are not assigned yet.
func (b *StaticIPAddressBuilder) WithIP(ip *string) *StaticIPAddressBuilder {
	if ip == nil || *ip == "" {
		b.set("ip", (*string)(nil))
		return b
	}
	a, err := netutil.ParseIP(*ip)
	if err != nil {
		b.invalid("%v", err)
		return b
	}
	s := a.String()
	b.set("ip", &s)
	return b
}

func (b *StaticIPAddressBuilder) WithAllocType(t models.IPAddressType) *StaticIPAddressBuilder {
	if _, err := models.ParseIPAddressType(t.String()); err != nil {
		b.invalid("unknown alloc type %d", int(t))
	}
	b.set("alloc_type", t)
	return b
}

func (b *StaticIPAddressBuilder) WithLeaseTime(seconds int) *StaticIPAddressBuilder {
	if seconds < 0 {
		b.invalid("lease time must not be negative")
	}
	b.set("lease_time", seconds)
	return b
}

func (b *StaticIPAddressBuilder) WithTempExpiresOn(t *time.Time) *StaticIPAddressBuilder {
	b.set("temp_expires_on", t)
	return b
}

func (b *StaticIPAddressBuilder) WithSubnetID(id int) *StaticIPAddressBuilder {
	b.set("subnet_id", id)
	return b
}

type StaticIPAddressRepository struct {
	*Repository[models.StaticIPAddress]
}

func NewStaticIPAddressRepository(db *gorm.DB) *StaticIPAddressRepository {
	return &StaticIPAddressRepository{NewRepository[models.StaticIPAddress](db)}
}

// GetUsedIPs returns the assigned addresses of a subnet.
func (r *StaticIPAddressRepository) GetUsedIPs(ctx context.Context, subnetID int) ([]netip.Addr, error) {
	rows, err := r.GetMany(ctx, filters.Query(filters.And(
		filters.StaticIPAddressClauses.WithSubnetID(subnetID),
		filters.Where("staticipaddresses.ip IS NOT NULL"),
	)))
	if err != nil {
		return nil, err
	}
	out := make([]netip.Addr, 0, len(rows))
	for _, row := range rows {
		if a, err := netutil.ParseIP(*row.IP); err == nil {
			out = append(out, a)
		}
	}
	return out, nil
}

// CreateOrUpdate updates the row holding the same ip, or creates one.
// created tells which of the two happened.
func (r *StaticIPAddressRepository) CreateOrUpdate(ctx context.Context, res Resource) (row *models.StaticIPAddress, created bool, err error) {
	if ip, ok := res["ip"].(*string); ok && ip != nil {
		existing, err := r.GetOne(ctx, filters.Query(filters.StaticIPAddressClauses.WithIP(*ip)))
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			row, err = r.UpdateByID(ctx, existing.ID, res)
			return row, false, err
		}
	}
	row, err = r.Create(ctx, res)
	return row, err == nil, err
}
