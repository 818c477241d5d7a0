package repositories

import (
	"net"

	"gorm.io/gorm"

	"regiond/internal/models"
	"regiond/internal/netutil"
)

type ReservedIPBuilder struct{ ResourceBuilder }

func NewReservedIPBuilder() *ReservedIPBuilder { return &ReservedIPBuilder{} }

func (b *ReservedIPBuilder) WithIP(ip string) *ReservedIPBuilder {
	a, err := netutil.ParseIP(ip)
	if err != nil {
		b.invalid("%v", err)
		return b
	}
	b.set("ip", a.String())
	return b
}

// WithMACAddress stores the address in lower-case colon form.
func (b *ReservedIPBuilder) WithMACAddress(mac string) *ReservedIPBuilder {
	hw, err := net.ParseMAC(mac)
	if err != nil || len(hw) != 6 {
		b.invalid("invalid MAC address %q", mac)
		return b
	}
	b.set("mac_address", hw.String())
	return b
}

func (b *ReservedIPBuilder) WithComment(c string) *ReservedIPBuilder {
	b.set("comment", c)
	return b
}

func (b *ReservedIPBuilder) WithSubnetID(id int) *ReservedIPBuilder {
	b.set("subnet_id", id)
	return b
}

type ReservedIPsRepository struct {
	*Repository[models.ReservedIP]
}

func NewReservedIPsRepository(db *gorm.DB) *ReservedIPsRepository {
	return &ReservedIPsRepository{NewRepository[models.ReservedIP](db)}
}
