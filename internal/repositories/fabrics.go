package repositories

import (
	"gorm.io/gorm"

	"regiond/internal/models"
)

type FabricBuilder struct{ ResourceBuilder }

func NewFabricBuilder() *FabricBuilder { return &FabricBuilder{} }

func (b *FabricBuilder) WithName(name string) *FabricBuilder {
	if name == "" {
		b.invalid("fabric name must not be empty")
	}
	b.set("name", name)
	return b
}

func (b *FabricBuilder) WithDescription(d string) *FabricBuilder {
	b.set("description", d)
	return b
}

func (b *FabricBuilder) WithClassType(ct *string) *FabricBuilder {
	b.set("class_type", ct)
	return b
}

type FabricsRepository struct {
	*Repository[models.Fabric]
}

func NewFabricsRepository(db *gorm.DB) *FabricsRepository {
	return &FabricsRepository{NewRepository[models.Fabric](db)}
}
