package repositories

import (
	"gorm.io/gorm"

	"regiond/internal/models"
)

type VLANBuilder struct{ ResourceBuilder }

func NewVLANBuilder() *VLANBuilder { return &VLANBuilder{} }

func (b *VLANBuilder) WithVID(vid int) *VLANBuilder {
	if vid < 0 || vid > 4094 {
		b.invalid("vid %d is outside 0-4094", vid)
	}
	b.set("vid", vid)
	return b
}

func (b *VLANBuilder) WithName(name string) *VLANBuilder {
	b.set("name", name)
	return b
}

func (b *VLANBuilder) WithDescription(d string) *VLANBuilder {
	b.set("description", d)
	return b
}

func (b *VLANBuilder) WithMTU(mtu int) *VLANBuilder {
	if mtu < 552 || mtu > 65535 {
		b.invalid("mtu %d is outside 552-65535", mtu)
	}
	b.set("mtu", mtu)
	return b
}

func (b *VLANBuilder) WithDHCPOn(on bool) *VLANBuilder {
	b.set("dhcp_on", on)
	return b
}

func (b *VLANBuilder) WithRelayVLANID(id *int) *VLANBuilder {
	b.set("relay_vlan_id", id)
	return b
}

func (b *VLANBuilder) WithFabricID(id int) *VLANBuilder {
	b.set("fabric_id", id)
	return b
}

type VLANsRepository struct {
	*Repository[models.VLAN]
}

func NewVLANsRepository(db *gorm.DB) *VLANsRepository {
	return &VLANsRepository{NewRepository[models.VLAN](db)}
}
