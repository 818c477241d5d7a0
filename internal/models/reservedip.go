package models

type ReservedIP struct {
	Base
	IP         string `gorm:"column:ip;type:varchar(45);uniqueIndex:ux_reservedips_subnet_ip,priority:2" json:"ip"`
	MACAddress string `gorm:"column:mac_address;type:varchar(17);uniqueIndex:ux_reservedips_subnet_mac,priority:2" json:"mac_address"`
	Comment    string `gorm:"column:comment;type:varchar(255)" json:"comment"`
	SubnetID   int    `gorm:"column:subnet_id;uniqueIndex:ux_reservedips_subnet_ip,priority:1;uniqueIndex:ux_reservedips_subnet_mac,priority:1" json:"subnet_id"`
}

func (ReservedIP) TableName() string { return ReservedIPsTable }

func (r ReservedIP) Etag() string {
	r.Base = r.Base.content()
	return etag(r)
}
