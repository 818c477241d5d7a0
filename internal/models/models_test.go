package models

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestEtagIgnoresTimestamps(t *testing.T) {
	a := Subnet{Base: Base{ID: 1, Created: time.Now()}, Name: "s", CIDR: "10.0.0.0/24"}
	b := a
	b.Updated = time.Now().Add(time.Hour)

	assert.Equal(t, a.Etag(), b.Etag())

	b.Name = "other"
	assert.NotEqual(t, a.Etag(), b.Etag())
}

func TestStringListRoundTrip(t *testing.T) {
	in := StringList{"8.8.8.8", "1.1.1.1"}
	v, err := in.Value()
	assert.NoError(t, err)

	var out StringList
	assert.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	assert.NoError(t, out.Scan([]byte("{}")))
	assert.Empty(t, out)
}

func TestParseIPAddressType(t *testing.T) {
	tp, err := ParseIPAddressType("discovered")
	assert.NoError(t, err)
	assert.Equal(t, IPAddressTypeDiscovered, tp)

	_, err = ParseIPAddressType("bogus")
	assert.Error(t, err)
}

func TestSubnetSchemaParses(t *testing.T) {
	s, err := schema.Parse(&Subnet{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	for _, col := range []string{"dns_servers", "disabled_boot_architectures"} {
		f := s.LookUpField(col)
		require.NotNil(t, f, col)
		assert.Equal(t, schema.DataType("text"), f.DataType, col)
	}
}
