package filters

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"regiond/internal/db/dbtest"
	"regiond/internal/models"
)

func TestAndDeduplicatesJoins(t *testing.T) {
	c := And(
		IPRangeClauses.WithVLANID(3),
		IPRangeClauses.WithFabricID(1),
		IPRangeClauses.WithType(models.IPRangeTypeDynamic),
	)

	assert.Len(t, c.Joins(), 2)
	cond, args := c.Condition()
	assert.Equal(t, "(subnets.vlan_id = ?) AND (vlans.fabric_id = ?) AND (ipranges.type = ?)", cond)
	assert.Equal(t, []any{3, 1, models.IPRangeTypeDynamic}, args)
}

func TestOrKeepsJoinsOfBothSides(t *testing.T) {
	c := Or(StaticIPAddressClauses.WithSubnetID(1), StaticIPAddressClauses.WithFabricID(2))

	assert.Len(t, c.Joins(), 2)
	cond, _ := c.Condition()
	assert.Contains(t, cond, " OR ")
}

func TestMalformedJoinGraphsPanic(t *testing.T) {
	a := Join{Left: "a", Right: "b", On: "a.b_id = b.id"}
	b := Join{Left: "b", Right: "c", On: "b.c_id = c.id"}
	cyc := Join{Left: "c", Right: "a", On: "c.a_id = a.id"}
	far := Join{Left: "x", Right: "y", On: "x.y_id = y.id"}

	assert.Panics(t, func() { NewClause("1 = 1", nil, a, b, cyc) })
	assert.Panics(t, func() { NewClause("1 = 1", nil, a, far) })
	assert.Panics(t, func() { NewClause("1 = 1", nil, Join{Left: "a", Right: "a"}) })
	assert.NotPanics(t, func() { NewClause("1 = 1", nil, a, b, a) })
}

func TestApplyRendersEachJoinOnce(t *testing.T) {
	db := dbtest.Open(t)

	q := Query(IPRangeClauses.WithFabricID(1)).And(IPRangeClauses.WithVLANID(2))
	stmt := q.Apply(db.Session(&gorm.Session{DryRun: true}).Model(&models.IPRange{}), models.IPRangesTable).
		Find(&[]models.IPRange{}).Statement
	sql := stmt.SQL.String()

	require.Equal(t, 1, strings.Count(sql, "JOIN subnets"))
	require.Equal(t, 1, strings.Count(sql, "JOIN vlans"))
	assert.Less(t, strings.Index(sql, "JOIN subnets"), strings.Index(sql, "JOIN vlans"))
}

func TestApplyPanicsWhenJoinsDoNotReachBase(t *testing.T) {
	db := dbtest.Open(t)

	assert.Panics(t, func() {
		SubnetClauses.WithFabricID(1).Apply(db.Model(&models.Fabric{}), models.FabricsTable)
	})
}

func TestEmptyQueryMatchesAll(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, db.Create(&models.Fabric{Name: "f0"}).Error)
	require.NoError(t, db.Create(&models.Fabric{Name: "f1"}).Error)

	var out []models.Fabric
	require.NoError(t, QuerySpec{}.Apply(db.Model(&models.Fabric{}), models.FabricsTable).Find(&out).Error)
	assert.Len(t, out, 2)
}
