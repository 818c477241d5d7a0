// Package netutil parses and compares addresses stored as text columns.
package netutil

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/apparentlymart/go-cidr/cidr"
)

// ParseIP parses s and maps IPv4-mapped IPv6 addresses down to IPv4.
func ParseIP(s string) (netip.Addr, error) {
	a, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid IP address %q", s)
	}
	return a.Unmap(), nil
}

// ParseCIDR parses s and returns the masked network.
func ParseCIDR(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(strings.TrimSpace(s))
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR %q", s)
	}
	if p.Addr().Is4In6() && p.Bits() >= 96 {
		p = netip.PrefixFrom(p.Addr().Unmap(), p.Bits()-96)
	}
	return p.Masked(), nil
}

// Contains reports whether a is inside p, both parsed from text.
func Contains(prefix, addr string) bool {
	p, err := ParseCIDR(prefix)
	if err != nil {
		return false
	}
	a, err := ParseIP(addr)
	if err != nil {
		return false
	}
	return p.Contains(a)
}

// InRange reports whether a lies in [start, end], bounds inclusive.
func InRange(a, start, end netip.Addr) bool {
	return a.BitLen() == start.BitLen() && start.Compare(a) <= 0 && a.Compare(end) <= 0
}

// Overlaps reports whether [s1, e1] and [s2, e2] share an address.
func Overlaps(s1, e1, s2, e2 netip.Addr) bool {
	return s1.BitLen() == s2.BitLen() && s1.Compare(e2) <= 0 && s2.Compare(e1) <= 0
}

// HostBounds returns the first and last assignable addresses of p. The
// network and broadcast addresses of IPv4 networks larger than /31 are
// excluded.
func HostBounds(p netip.Prefix) (first, last netip.Addr) {
	lo, hi := cidr.AddressRange(toIPNet(p))
	first, last = fromIP(lo), fromIP(hi)
	if p.Addr().Is4() && p.Bits() < 31 {
		first, last = first.Next(), last.Prev()
	}
	return first, last
}

// Size is the number of addresses in p, saturated at 1<<63.
func Size(p netip.Prefix) uint64 {
	if p.Addr().BitLen()-p.Bits() >= 64 {
		return 1 << 63
	}
	return cidr.AddressCount(toIPNet(p))
}

func toIPNet(p netip.Prefix) *net.IPNet {
	return &net.IPNet{
		IP:   net.IP(p.Addr().AsSlice()),
		Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
	}
}

func fromIP(ip net.IP) netip.Addr {
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	a, _ := netip.AddrFromSlice(ip)
	return a
}
