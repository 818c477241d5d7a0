package services

import (
	"gorm.io/gorm"

	"regiond/internal/repositories"
	"regiond/internal/workflow"
)

// Collection holds the services of one unit of work. All of them share the
// transaction db and the workflow registrar of that unit.
type Collection struct {
	Fabrics           *FabricsService
	VLANs             *VLANsService
	Subnets           *SubnetsService
	IPRanges          *IPRangesService
	ReservedIPs       *ReservedIPsService
	StaticIPAddresses *StaticIPAddressService
	DHCPSnippets      *DHCPSnippetsService

	fabricsCache *FabricsCache
}

func NewCollection(db *gorm.DB, workflows workflow.Registrar) *Collection {
	var (
		fabrics  = repositories.NewFabricsRepository(db)
		vlans    = repositories.NewVLANsRepository(db)
		subnets  = repositories.NewSubnetsRepository(db)
		ranges   = repositories.NewIPRangesRepository(db)
		reserved = repositories.NewReservedIPsRepository(db)
		static   = repositories.NewStaticIPAddressRepository(db)
		snippets = repositories.NewDHCPSnippetsRepository(db)
	)
	c := &Collection{fabricsCache: &FabricsCache{}}
	c.Fabrics = NewFabricsService(fabrics, c.fabricsCache)
	c.VLANs = NewVLANsService(vlans, fabrics, workflows)
	c.Subnets = NewSubnetsService(subnets, vlans, ranges, reserved, static, workflows)
	c.DHCPSnippets = NewDHCPSnippetsService(snippets)
	c.IPRanges = NewIPRangesService(ranges, subnets, c.DHCPSnippets, workflows)
	c.ReservedIPs = NewReservedIPsService(reserved, subnets, ranges, workflows)
	c.StaticIPAddresses = NewStaticIPAddressService(static, subnets, ranges, reserved, workflows)
	return c
}

// Close drops the caches of the unit.
func (c *Collection) Close() {
	c.fabricsCache.Clear()
}
