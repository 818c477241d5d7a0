package models

const DefaultMTU = 1500

type VLAN struct {
	Base
	VID         int    `gorm:"column:vid;uniqueIndex:ux_vlans_fabric_vid,priority:2" json:"vid"`
	Name        string `gorm:"column:name;type:varchar(256)" json:"name"`
	Description string `gorm:"column:description;type:text" json:"description"`
	MTU         int    `gorm:"column:mtu;default:1500" json:"mtu"`
	DHCPOn      bool   `gorm:"column:dhcp_on" json:"dhcp_on"`
	RelayVLANID *int   `gorm:"column:relay_vlan_id" json:"relay_vlan_id"`
	FabricID    int    `gorm:"column:fabric_id;index;uniqueIndex:ux_vlans_fabric_vid,priority:1" json:"fabric_id"`
}

func (VLAN) TableName() string { return VLANsTable }

func (v VLAN) Etag() string {
	v.Base = v.Base.content()
	return etag(v)
}
