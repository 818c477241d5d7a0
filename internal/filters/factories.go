package filters

import "regiond/internal/models"

type fabricClauses struct{}

// FabricClauses builds clauses over fabrics.
var FabricClauses fabricClauses

func (fabricClauses) WithID(id int) Clause { return Where("fabrics.id = ?", id) }

func (fabricClauses) WithIDs(ids []int) Clause { return Where("fabrics.id IN ?", ids) }

func (fabricClauses) WithName(name string) Clause { return Where("fabrics.name = ?", name) }

type vlanClauses struct{}

var VLANClauses vlanClauses

func (vlanClauses) WithID(id int) Clause { return Where("vlans.id = ?", id) }

func (vlanClauses) WithFabricID(id int) Clause { return Where("vlans.fabric_id = ?", id) }

func (vlanClauses) WithVID(vid int) Clause { return Where("vlans.vid = ?", vid) }

func (vlanClauses) WithDHCPOn(on bool) Clause { return Where("vlans.dhcp_on = ?", on) }

type subnetClauses struct{}

var SubnetClauses subnetClauses

func (subnetClauses) WithID(id int) Clause { return Where("subnets.id = ?", id) }

func (subnetClauses) WithIDs(ids []int) Clause { return Where("subnets.id IN ?", ids) }

func (subnetClauses) WithVLANID(id int) Clause { return Where("subnets.vlan_id = ?", id) }

func (subnetClauses) WithCIDR(cidr string) Clause { return Where("subnets.cidr = ?", cidr) }

func (subnetClauses) WithFabricID(id int) Clause {
	return NewClause("vlans.fabric_id = ?", []any{id}, SubnetToVLAN)
}

type iprangeClauses struct{}

var IPRangeClauses iprangeClauses

func (iprangeClauses) WithID(id int) Clause { return Where("ipranges.id = ?", id) }

func (iprangeClauses) WithSubnetID(id int) Clause { return Where("ipranges.subnet_id = ?", id) }

func (iprangeClauses) WithSubnetIDs(ids []int) Clause {
	return Where("ipranges.subnet_id IN ?", ids)
}

func (iprangeClauses) WithType(t models.IPRangeType) Clause {
	return Where("ipranges.type = ?", t)
}

func (iprangeClauses) WithVLANID(id int) Clause {
	return NewClause("subnets.vlan_id = ?", []any{id}, IPRangeToSubnet)
}

func (iprangeClauses) WithFabricID(id int) Clause {
	return NewClause("vlans.fabric_id = ?", []any{id}, IPRangeToSubnet, SubnetToVLAN)
}

type reservedIPClauses struct{}

var ReservedIPClauses reservedIPClauses

func (reservedIPClauses) WithID(id int) Clause { return Where("reservedips.id = ?", id) }

func (reservedIPClauses) WithSubnetID(id int) Clause {
	return Where("reservedips.subnet_id = ?", id)
}

func (reservedIPClauses) WithIP(ip string) Clause { return Where("reservedips.ip = ?", ip) }

func (reservedIPClauses) WithMACAddress(mac string) Clause {
	return Where("reservedips.mac_address = ?", mac)
}

func (reservedIPClauses) WithVLANID(id int) Clause {
	return NewClause("subnets.vlan_id = ?", []any{id}, ReservedIPToSubnet)
}

func (reservedIPClauses) WithFabricID(id int) Clause {
	return NewClause("vlans.fabric_id = ?", []any{id}, ReservedIPToSubnet, SubnetToVLAN)
}

type staticIPAddressClauses struct{}

var StaticIPAddressClauses staticIPAddressClauses

func (staticIPAddressClauses) WithID(id int) Clause {
	return Where("staticipaddresses.id = ?", id)
}

func (staticIPAddressClauses) WithIP(ip string) Clause {
	return Where("staticipaddresses.ip = ?", ip)
}

func (staticIPAddressClauses) WithSubnetID(id int) Clause {
	return Where("staticipaddresses.subnet_id = ?", id)
}

func (staticIPAddressClauses) WithAllocType(t models.IPAddressType) Clause {
	return Where("staticipaddresses.alloc_type = ?", t)
}

func (staticIPAddressClauses) WithVLANID(id int) Clause {
	return NewClause("subnets.vlan_id = ?", []any{id}, StaticIPToSubnet)
}

func (staticIPAddressClauses) WithFabricID(id int) Clause {
	return NewClause("vlans.fabric_id = ?", []any{id}, StaticIPToSubnet, SubnetToVLAN)
}

type dhcpSnippetClauses struct{}

var DHCPSnippetClauses dhcpSnippetClauses

func (dhcpSnippetClauses) WithID(id int) Clause { return Where("dhcpsnippets.id = ?", id) }

func (dhcpSnippetClauses) WithIPRangeID(id int) Clause {
	return Where("dhcpsnippets.iprange_id = ?", id)
}

func (dhcpSnippetClauses) WithSubnetID(id int) Clause {
	return Where("dhcpsnippets.subnet_id = ?", id)
}
