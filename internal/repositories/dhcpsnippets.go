package repositories

import (
	"gorm.io/gorm"

	"regiond/internal/models"
)

type DHCPSnippetBuilder struct{ ResourceBuilder }

func NewDHCPSnippetBuilder() *DHCPSnippetBuilder { return &DHCPSnippetBuilder{} }

func (b *DHCPSnippetBuilder) WithName(name string) *DHCPSnippetBuilder {
	if name == "" {
		b.invalid("snippet name must not be empty")
	}
	b.set("name", name)
	return b
}

func (b *DHCPSnippetBuilder) WithValue(v string) *DHCPSnippetBuilder {
	b.set("value", v)
	return b
}

func (b *DHCPSnippetBuilder) WithDescription(d string) *DHCPSnippetBuilder {
	b.set("description", d)
	return b
}

func (b *DHCPSnippetBuilder) WithEnabled(on bool) *DHCPSnippetBuilder {
	b.set("enabled", on)
	return b
}

func (b *DHCPSnippetBuilder) WithSubnetID(id *int) *DHCPSnippetBuilder {
	b.set("subnet_id", id)
	return b
}

func (b *DHCPSnippetBuilder) WithIPRangeID(id *int) *DHCPSnippetBuilder {
	b.set("iprange_id", id)
	return b
}

type DHCPSnippetsRepository struct {
	*Repository[models.DHCPSnippet]
}

func NewDHCPSnippetsRepository(db *gorm.DB) *DHCPSnippetsRepository {
	return &DHCPSnippetsRepository{NewRepository[models.DHCPSnippet](db)}
}
