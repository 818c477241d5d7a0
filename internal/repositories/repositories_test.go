package repositories

import (
	"context"
	"fmt"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"regiond/internal/db/dbtest"
	"regiond/internal/errs"
	"regiond/internal/filters"
	"regiond/internal/models"
)

type fixture struct {
	ctx     context.Context
	db      *gorm.DB
	fabrics *FabricsRepository
	vlans   *VLANsRepository
	subnets *SubnetsRepository
	ranges  *IPRangesRepository
	static  *StaticIPAddressRepository
}

func newFixture(t *testing.T) *fixture {
	db := dbtest.Open(t)
	return &fixture{
		ctx:     context.Background(),
		db:      db,
		fabrics: NewFabricsRepository(db),
		vlans:   NewVLANsRepository(db),
		subnets: NewSubnetsRepository(db),
		ranges:  NewIPRangesRepository(db),
		static:  NewStaticIPAddressRepository(db),
	}
}

func (f *fixture) vlan(t *testing.T, vid int, dhcp bool) *models.VLAN {
	fabric, err := f.fabrics.GetOne(f.ctx, filters.QuerySpec{})
	require.NoError(t, err)
	if fabric == nil {
		res, err := NewFabricBuilder().WithName("fabric-0").Build()
		require.NoError(t, err)
		fabric, err = f.fabrics.Create(f.ctx, res)
		require.NoError(t, err)
	}
	res, err := NewVLANBuilder().WithVID(vid).WithMTU(models.DefaultMTU).
		WithDHCPOn(dhcp).WithFabricID(fabric.ID).Build()
	require.NoError(t, err)
	v, err := f.vlans.Create(f.ctx, res)
	require.NoError(t, err)
	return v
}

func (f *fixture) subnet(t *testing.T, name, cidr string, vlanID int) *models.Subnet {
	res, err := NewSubnetBuilder().WithName(name).WithCIDR(cidr).WithVLANID(vlanID).Build()
	require.NoError(t, err)
	s, err := f.subnets.Create(f.ctx, res)
	require.NoError(t, err)
	return s
}

func (f *fixture) iprange(t *testing.T, subnetID int, typ models.IPRangeType, start, end string) *models.IPRange {
	res, err := NewIPRangeBuilder().WithType(typ).WithStartIP(start).WithEndIP(end).WithSubnetID(subnetID).Build()
	require.NoError(t, err)
	r, err := f.ranges.Create(f.ctx, res)
	require.NoError(t, err)
	return r
}

func TestListWalksEveryRowOnceInDescendingOrder(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 7; i++ {
		res, err := NewFabricBuilder().WithName(fmt.Sprintf("fabric-%d", i)).Build()
		require.NoError(t, err)
		_, err = f.fabrics.Create(f.ctx, res)
		require.NoError(t, err)
	}

	for _, size := range []int{1, 2, 3, 7, 10} {
		var (
			ids   []int
			token string
			pages int
		)
		for {
			page, err := f.fabrics.List(f.ctx, token, size, filters.QuerySpec{})
			require.NoError(t, err)
			pages++
			assert.LessOrEqual(t, len(page.Items), size)
			for _, item := range page.Items {
				ids = append(ids, item.ID)
			}
			if page.NextToken == nil {
				break
			}
			token = *page.NextToken
		}
		require.Len(t, ids, 7, "size %d", size)
		for i := 1; i < len(ids); i++ {
			assert.Greater(t, ids[i-1], ids[i])
		}
		assert.Equal(t, (7+size-1)/size, pages, "size %d", size)
	}
}

func TestListRejectsBadArguments(t *testing.T) {
	f := newFixture(t)

	_, err := f.fabrics.List(f.ctx, "", 0, filters.QuerySpec{})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.fabrics.List(f.ctx, "abc", 10, filters.QuerySpec{})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestUpdateAndDeleteMissingRows(t *testing.T) {
	f := newFixture(t)

	_, err := f.fabrics.UpdateByID(f.ctx, 42, Resource{"name": "x"})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	deleted, err := f.fabrics.DeleteByID(f.ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	res, err := NewFabricBuilder().WithName("dup").Build()
	require.NoError(t, err)

	_, err = f.fabrics.Create(f.ctx, res)
	require.NoError(t, err)
	_, err = f.fabrics.Create(f.ctx, res)
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestBuilderCollectsEveryInvalidValue(t *testing.T) {
	_, err := NewSubnetBuilder().
		WithCIDR("10.0.0.0/33").
		WithDNSServers([]string{"8.8.8.8", "nope"}).
		WithDisabledBootArchitectures([]string{"martian"}).
		Build()

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindValidation, e.Kind)
	assert.Len(t, e.Details, 3)
}

func TestSubnetBuilderNormalizesValues(t *testing.T) {
	gw := "10.0.0.1"
	res, err := NewSubnetBuilder().
		WithCIDR("10.0.0.7/24").
		WithGatewayIP(&gw).
		WithDisabledBootArchitectures([]string{"0x07"}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.0/24", res["cidr"])
	assert.Equal(t, models.StringList{"uefi_amd64_tftp"}, res["disabled_boot_architectures"])
}

func TestSubnetDeleteGuard(t *testing.T) {
	f := newFixture(t)
	vlan := f.vlan(t, 10, true)
	subnet := f.subnet(t, "s0", "10.0.0.0/24", vlan.ID)
	dyn := f.iprange(t, subnet.ID, models.IPRangeTypeDynamic, "10.0.0.10", "10.0.0.20")

	_, err := f.subnets.DeleteByID(f.ctx, subnet.ID)
	assert.ErrorIs(t, err, errs.ErrPreconditionFailed)

	_, err = f.subnets.DeleteMany(f.ctx, filters.Query(filters.SubnetClauses.WithVLANID(vlan.ID)))
	assert.ErrorIs(t, err, errs.ErrPreconditionFailed)

	_, err = f.ranges.DeleteByID(f.ctx, dyn.ID)
	require.NoError(t, err)

	deleted, err := f.subnets.DeleteByID(f.ctx, subnet.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, subnet.ID, deleted.ID)
}

func TestSubnetDeleteAllowedOnceDHCPIsOff(t *testing.T) {
	f := newFixture(t)
	vlan := f.vlan(t, 10, true)
	subnet := f.subnet(t, "s0", "10.0.0.0/24", vlan.ID)
	f.iprange(t, subnet.ID, models.IPRangeTypeDynamic, "10.0.0.10", "10.0.0.20")

	_, err := f.vlans.UpdateByID(f.ctx, vlan.ID, Resource{"dhcp_on": false})
	require.NoError(t, err)

	deleted, err := f.subnets.DeleteByID(f.ctx, subnet.ID)
	require.NoError(t, err)
	assert.NotNil(t, deleted)
}

func TestFindBestSubnetPrefersDHCPThenPrefix(t *testing.T) {
	f := newFixture(t)
	off := f.vlan(t, 10, false)
	on := f.vlan(t, 20, true)
	f.subnet(t, "a", "10.0.0.0/24", off.ID)
	b := f.subnet(t, "b", "10.0.0.0/28", on.ID)
	f.subnet(t, "c", "10.0.0.0/16", on.ID)
	f.subnet(t, "far", "192.168.0.0/24", on.ID)

	got, err := f.subnets.FindBestSubnetForIP(f.ctx, netip.MustParseAddr("10.0.0.5"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.ID, got.ID)

	got, err = f.subnets.FindBestSubnetForIP(f.ctx, netip.MustParseAddr("::ffff:10.0.0.5"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.ID, got.ID)

	got, err = f.subnets.FindBestSubnetForIP(f.ctx, netip.MustParseAddr("172.16.0.1"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindBestSubnetIgnoresHostPrefixes(t *testing.T) {
	f := newFixture(t)
	on := f.vlan(t, 20, true)
	host := f.subnet(t, "host", "10.0.0.5/32", on.ID)
	wide := f.subnet(t, "wide", "10.0.0.0/24", on.ID)
	f.subnet(t, "host6", "2001:db8::1/128", on.ID)

	got, err := f.subnets.FindBestSubnetForIP(f.ctx, netip.MustParseAddr("10.0.0.5"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wide.ID, got.ID)
	assert.NotEqual(t, host.ID, got.ID)

	got, err = f.subnets.FindBestSubnetForIP(f.ctx, netip.MustParseAddr("2001:db8::1"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetDynamicRangeForIP(t *testing.T) {
	f := newFixture(t)
	vlan := f.vlan(t, 10, false)
	subnet := f.subnet(t, "s0", "10.0.0.0/24", vlan.ID)
	first := f.iprange(t, subnet.ID, models.IPRangeTypeDynamic, "10.0.0.10", "10.0.0.20")
	f.iprange(t, subnet.ID, models.IPRangeTypeDynamic, "10.0.0.30", "10.0.0.40")

	got, err := f.ranges.GetDynamicRangeForIP(f.ctx, *subnet, netip.MustParseAddr("10.0.0.15"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	got, err = f.ranges.GetDynamicRangeForIP(f.ctx, *subnet, netip.MustParseAddr("10.0.0.20"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	got, err = f.ranges.GetDynamicRangeForIP(f.ctx, *subnet, netip.MustParseAddr("10.0.0.25"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetOverlappingSkipsExcludedRange(t *testing.T) {
	f := newFixture(t)
	vlan := f.vlan(t, 10, false)
	subnet := f.subnet(t, "s0", "10.0.0.0/24", vlan.ID)
	r := f.iprange(t, subnet.ID, models.IPRangeTypeReserved, "10.0.0.10", "10.0.0.20")

	start, end := netip.MustParseAddr("10.0.0.15"), netip.MustParseAddr("10.0.0.25")
	got, err := f.ranges.GetOverlapping(f.ctx, subnet.ID, start, end, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = f.ranges.GetOverlapping(f.ctx, subnet.ID, start, end, r.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStaticIPCreateOrUpdate(t *testing.T) {
	f := newFixture(t)
	vlan := f.vlan(t, 10, false)
	subnet := f.subnet(t, "s0", "10.0.0.0/24", vlan.ID)
	ip := "10.0.0.9"

	res, err := NewStaticIPAddressBuilder().WithIP(&ip).WithAllocType(models.IPAddressTypeAuto).WithSubnetID(subnet.ID).Build()
	require.NoError(t, err)
	first, created, err := f.static.CreateOrUpdate(f.ctx, res)
	require.NoError(t, err)
	assert.True(t, created)

	res, err = NewStaticIPAddressBuilder().WithIP(&ip).WithAllocType(models.IPAddressTypeSticky).Build()
	require.NoError(t, err)
	second, created, err := f.static.CreateOrUpdate(f.ctx, res)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.IPAddressTypeSticky, second.AllocType)

	used, err := f.static.GetUsedIPs(f.ctx, subnet.ID)
	require.NoError(t, err)
	assert.Equal(t, []netip.Addr{netip.MustParseAddr(ip)}, used)
}
