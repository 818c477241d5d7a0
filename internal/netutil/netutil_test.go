package netutil

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIPUnmaps(t *testing.T) {
	a, err := ParseIP("::ffff:10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("10.0.0.5"), a)

	_, err = ParseIP("10.0.0.300")
	assert.Error(t, err)
}

func TestParseCIDRMasks(t *testing.T) {
	p, err := ParseCIDR("10.0.0.7/24")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/24", p.String())
}

func TestHostBounds(t *testing.T) {
	first, last := HostBounds(netip.MustParsePrefix("10.0.0.0/24"))
	assert.Equal(t, "10.0.0.1", first.String())
	assert.Equal(t, "10.0.0.254", last.String())

	first, last = HostBounds(netip.MustParsePrefix("10.0.0.0/31"))
	assert.Equal(t, "10.0.0.0", first.String())
	assert.Equal(t, "10.0.0.1", last.String())

	first, last = HostBounds(netip.MustParsePrefix("2001:db8::/126"))
	assert.Equal(t, "2001:db8::", first.String())
	assert.Equal(t, "2001:db8::3", last.String())
}

func TestRanges(t *testing.T) {
	a := netip.MustParseAddr
	assert.True(t, InRange(a("10.0.0.10"), a("10.0.0.10"), a("10.0.0.20")))
	assert.True(t, InRange(a("10.0.0.20"), a("10.0.0.10"), a("10.0.0.20")))
	assert.False(t, InRange(a("10.0.0.21"), a("10.0.0.10"), a("10.0.0.20")))
	assert.False(t, InRange(a("::1"), a("10.0.0.10"), a("10.0.0.20")))

	assert.True(t, Overlaps(a("10.0.0.1"), a("10.0.0.10"), a("10.0.0.10"), a("10.0.0.20")))
	assert.False(t, Overlaps(a("10.0.0.1"), a("10.0.0.9"), a("10.0.0.10"), a("10.0.0.20")))
	assert.Equal(t, uint64(256), Size(netip.MustParsePrefix("10.0.0.0/24")))
}
