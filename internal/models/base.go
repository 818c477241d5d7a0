package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

const (
	FabricsTable           = "fabrics"
	VLANsTable             = "vlans"
	SubnetsTable           = "subnets"
	IPRangesTable          = "ipranges"
	ReservedIPsTable       = "reservedips"
	StaticIPAddressesTable = "staticipaddresses"
	DHCPSnippetsTable      = "dhcpsnippets"
	SecretsTable           = "secrets"
)

// Model is implemented by every persisted entity.
type Model interface {
	GetID() int
	Etag() string
	TableName() string
}

type Base struct {
	ID      int       `gorm:"column:id;primaryKey" json:"id"`
	Created time.Time `gorm:"column:created;autoCreateTime" json:"created"`
	Updated time.Time `gorm:"column:updated;autoUpdateTime" json:"updated"`
}

func (b Base) GetID() int { return b.ID }

// content drops the timestamps so that the etag only follows the data.
func (b Base) content() Base { return Base{ID: b.ID} }

// etag is the hex sha256 of the canonical JSON form of v.
func etag(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		// models only hold plain JSON-safe fields
		panic(err)
	}
	if canon, err := jsoncanonicalizer.Transform(raw); err == nil {
		raw = canon
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// ListResult is one keyset-paginated page.
type ListResult[T any] struct {
	Items     []T     `json:"items"`
	NextToken *string `json:"next_token,omitempty"`
}
