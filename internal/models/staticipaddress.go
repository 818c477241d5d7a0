package models

import (
	"fmt"
	"strings"
	"time"
)

type IPAddressType int

const (
	IPAddressTypeAuto         IPAddressType = 0
	IPAddressTypeSticky       IPAddressType = 1
	IPAddressTypeUserReserved IPAddressType = 4
	IPAddressTypeDHCP         IPAddressType = 5
	IPAddressTypeDiscovered   IPAddressType = 6
)

var ipAddressTypeNames = map[IPAddressType]string{
	IPAddressTypeAuto:         "AUTO",
	IPAddressTypeSticky:       "STICKY",
	IPAddressTypeUserReserved: "USER_RESERVED",
	IPAddressTypeDHCP:         "DHCP",
	IPAddressTypeDiscovered:   "DISCOVERED",
}

func (t IPAddressType) String() string {
	if n, ok := ipAddressTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("IPAddressType(%d)", int(t))
}

func ParseIPAddressType(s string) (IPAddressType, error) {
	for t, n := range ipAddressTypeNames {
		if strings.EqualFold(n, s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown alloc type %q", s)
}

type StaticIPAddress struct {
	Base
	IP            *string       `gorm:"column:ip;type:varchar(45);index" json:"ip"`
	AllocType     IPAddressType `gorm:"column:alloc_type" json:"alloc_type"`
	LeaseTime     int           `gorm:"column:lease_time" json:"lease_time"`
	TempExpiresOn *time.Time    `gorm:"column:temp_expires_on" json:"temp_expires_on"`
	SubnetID      int           `gorm:"column:subnet_id;index" json:"subnet_id"`
}

func (StaticIPAddress) TableName() string { return StaticIPAddressesTable }

func (s StaticIPAddress) Etag() string {
	s.Base = s.Base.content()
	return etag(s)
}
