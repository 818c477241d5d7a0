package api

import (
	"time"

	"regiond/internal/errs"
	"regiond/internal/models"
	"regiond/internal/repositories"
)

// Request bodies. Absent fields are left untouched on update.

type fabricRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ClassType   *string `json:"class_type"`
}

func (req fabricRequest) resource() (repositories.Resource, error) {
	b := repositories.NewFabricBuilder()
	if req.Name != nil {
		b.WithName(*req.Name)
	}
	if req.Description != nil {
		b.WithDescription(*req.Description)
	}
	if req.ClassType != nil {
		b.WithClassType(req.ClassType)
	}
	return b.Build()
}

type vlanRequest struct {
	VID         *int    `json:"vid"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	MTU         *int    `json:"mtu"`
	DHCPOn      *bool   `json:"dhcp_on"`
	RelayVLANID *int    `json:"relay_vlan_id"`
	FabricID    *int    `json:"fabric_id"`
}

func (req vlanRequest) resource() (repositories.Resource, error) {
	b := repositories.NewVLANBuilder()
	if req.VID != nil {
		b.WithVID(*req.VID)
	}
	if req.Name != nil {
		b.WithName(*req.Name)
	}
	if req.Description != nil {
		b.WithDescription(*req.Description)
	}
	if req.MTU != nil {
		b.WithMTU(*req.MTU)
	}
	if req.DHCPOn != nil {
		b.WithDHCPOn(*req.DHCPOn)
	}
	if req.RelayVLANID != nil {
		b.WithRelayVLANID(req.RelayVLANID)
	}
	if req.FabricID != nil {
		b.WithFabricID(*req.FabricID)
	}
	return b.Build()
}

type subnetRequest struct {
	Name                      *string          `json:"name"`
	Description               *string          `json:"description"`
	CIDR                      *string          `json:"cidr"`
	RDNSMode                  *models.RDNSMode `json:"rdns_mode"`
	GatewayIP                 *string          `json:"gateway_ip"`
	DNSServers                []string         `json:"dns_servers"`
	AllowDNS                  *bool            `json:"allow_dns"`
	AllowProxy                *bool            `json:"allow_proxy"`
	ActiveDiscovery           *bool            `json:"active_discovery"`
	Managed                   *bool            `json:"managed"`
	DisabledBootArchitectures []string         `json:"disabled_boot_architectures"`
	VLANID                    *int             `json:"vlan_id"`
}

func (req subnetRequest) resource() (repositories.Resource, error) {
	b := repositories.NewSubnetBuilder()
	if req.Name != nil {
		b.WithName(*req.Name)
	}
	if req.Description != nil {
		b.WithDescription(*req.Description)
	}
	if req.CIDR != nil {
		b.WithCIDR(*req.CIDR)
	}
	if req.RDNSMode != nil {
		b.WithRDNSMode(*req.RDNSMode)
	}
	if req.GatewayIP != nil {
		b.WithGatewayIP(req.GatewayIP)
	}
	if req.DNSServers != nil {
		b.WithDNSServers(req.DNSServers)
	}
	if req.AllowDNS != nil {
		b.WithAllowDNS(*req.AllowDNS)
	}
	if req.AllowProxy != nil {
		b.WithAllowProxy(*req.AllowProxy)
	}
	if req.ActiveDiscovery != nil {
		b.WithActiveDiscovery(*req.ActiveDiscovery)
	}
	if req.Managed != nil {
		b.WithManaged(*req.Managed)
	}
	if req.DisabledBootArchitectures != nil {
		b.WithDisabledBootArchitectures(req.DisabledBootArchitectures)
	}
	if req.VLANID != nil {
		b.WithVLANID(*req.VLANID)
	}
	return b.Build()
}

type ipRangeRequest struct {
	Type     *models.IPRangeType `json:"type"`
	StartIP  *string             `json:"start_ip"`
	EndIP    *string             `json:"end_ip"`
	Comment  *string             `json:"comment"`
	SubnetID *int                `json:"subnet_id"`
}

func (req ipRangeRequest) resource() (repositories.Resource, error) {
	b := repositories.NewIPRangeBuilder()
	if req.Type != nil {
		b.WithType(*req.Type)
	}
	if req.StartIP != nil {
		b.WithStartIP(*req.StartIP)
	}
	if req.EndIP != nil {
		b.WithEndIP(*req.EndIP)
	}
	if req.Comment != nil {
		b.WithComment(*req.Comment)
	}
	if req.SubnetID != nil {
		b.WithSubnetID(*req.SubnetID)
	}
	return b.Build()
}

type reservedIPRequest struct {
	IP         *string `json:"ip"`
	MACAddress *string `json:"mac_address"`
	Comment    *string `json:"comment"`
	SubnetID   *int    `json:"subnet_id"`
}

func (req reservedIPRequest) resource() (repositories.Resource, error) {
	b := repositories.NewReservedIPBuilder()
	if req.IP != nil {
		b.WithIP(*req.IP)
	}
	if req.MACAddress != nil {
		b.WithMACAddress(*req.MACAddress)
	}
	if req.Comment != nil {
		b.WithComment(*req.Comment)
	}
	if req.SubnetID != nil {
		b.WithSubnetID(*req.SubnetID)
	}
	return b.Build()
}

type staticIPAddressRequest struct {
	IP            *string    `json:"ip"`
	AllocType     *string    `json:"alloc_type"`
	LeaseTime     *int       `json:"lease_time"`
	TempExpiresOn *time.Time `json:"temp_expires_on"`
	SubnetID      *int       `json:"subnet_id"`
}

func (req staticIPAddressRequest) resource() (repositories.Resource, error) {
	b := repositories.NewStaticIPAddressBuilder()
	if req.IP != nil {
		b.WithIP(req.IP)
	}
	if req.AllocType != nil {
		t, err := models.ParseIPAddressType(*req.AllocType)
		if err != nil {
			return nil, errs.Validation("%v", err)
		}
		b.WithAllocType(t)
	}
	if req.LeaseTime != nil {
		b.WithLeaseTime(*req.LeaseTime)
	}
	if req.TempExpiresOn != nil {
		b.WithTempExpiresOn(req.TempExpiresOn)
	}
	if req.SubnetID != nil {
		b.WithSubnetID(*req.SubnetID)
	}
	return b.Build()
}

type dhcpSnippetRequest struct {
	Name        *string `json:"name"`
	Value       *string `json:"value"`
	Description *string `json:"description"`
	Enabled     *bool   `json:"enabled"`
	SubnetID    *int    `json:"subnet_id"`
	IPRangeID   *int    `json:"iprange_id"`
}

func (req dhcpSnippetRequest) resource() (repositories.Resource, error) {
	b := repositories.NewDHCPSnippetBuilder()
	if req.Name != nil {
		b.WithName(*req.Name)
	}
	if req.Value != nil {
		b.WithValue(*req.Value)
	}
	if req.Description != nil {
		b.WithDescription(*req.Description)
	}
	if req.Enabled != nil {
		b.WithEnabled(*req.Enabled)
	}
	if req.SubnetID != nil {
		b.WithSubnetID(req.SubnetID)
	}
	if req.IPRangeID != nil {
		b.WithIPRangeID(req.IPRangeID)
	}
	return b.Build()
}
