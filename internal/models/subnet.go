package models

type RDNSMode int

const (
	RDNSModeDisabled RDNSMode = iota
	RDNSModeEnabled
	RDNSModeRFC2317
)

type Subnet struct {
	Base
	Name                      string     `gorm:"column:name;type:varchar(256);uniqueIndex" json:"name"`
	Description               string     `gorm:"column:description;type:text" json:"description"`
	CIDR                      string     `gorm:"column:cidr;type:varchar(64)" json:"cidr"`
	RDNSMode                  RDNSMode   `gorm:"column:rdns_mode" json:"rdns_mode"`
	GatewayIP                 *string    `gorm:"column:gateway_ip;type:varchar(45)" json:"gateway_ip"`
	DNSServers                StringList `gorm:"column:dns_servers" json:"dns_servers"`
	AllowDNS                  bool       `gorm:"column:allow_dns" json:"allow_dns"`
	AllowProxy                bool       `gorm:"column:allow_proxy" json:"allow_proxy"`
	ActiveDiscovery           bool       `gorm:"column:active_discovery" json:"active_discovery"`
	Managed                   bool       `gorm:"column:managed" json:"managed"`
	DisabledBootArchitectures StringList `gorm:"column:disabled_boot_architectures" json:"disabled_boot_architectures"`
	VLANID                    int        `gorm:"column:vlan_id;index" json:"vlan_id"`
}

func (Subnet) TableName() string { return SubnetsTable }

func (s Subnet) Etag() string {
	s.Base = s.Base.content()
	return etag(s)
}
