// Package filters builds query predicates over the network entities.
//
// A Clause couples a SQL condition with the joins it needs. Joins are
// stored as edges between tables; combining clauses unions the edges and
// requires the result to stay a tree, so the same table is never joined
// twice and every joined table is reachable from the queried one.
package filters

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Join links two tables. On is the raw join condition.
type Join struct {
	Left  string
	Right string
	On    string
}

func (j Join) key() [2]string {
	if j.Left < j.Right {
		return [2]string{j.Left, j.Right}
	}
	return [2]string{j.Right, j.Left}
}

// Clause is immutable; every combinator returns a new value.
type Clause struct {
	cond  string
	args  []any
	joins []Join
}

// NewClause panics if joins do not form a tree.
func NewClause(cond string, args []any, joins ...Join) Clause {
	c := Clause{cond: cond, args: args, joins: dedupJoins(joins)}
	mustBeTree(c.joins)
	return c
}

// Where is a join-free clause.
func Where(cond string, args ...any) Clause {
	return Clause{cond: cond, args: args}
}

func (c Clause) Condition() (string, []any) {
	return c.cond, append([]any(nil), c.args...)
}

func (c Clause) Joins() []Join {
	return append([]Join(nil), c.joins...)
}

func And(clauses ...Clause) Clause { return combine("AND", clauses) }

func Or(clauses ...Clause) Clause { return combine("OR", clauses) }

func combine(op string, clauses []Clause) Clause {
	var (
		conds []string
		args  []any
		joins []Join
	)
	for _, c := range clauses {
		if c.cond != "" {
			conds = append(conds, "("+c.cond+")")
			args = append(args, c.args...)
		}
		joins = append(joins, c.joins...)
	}
	return NewClause(strings.Join(conds, " "+op+" "), args, joins...)
}

// Apply adds the joins and the condition to tx. base is the table being
// queried; joins are emitted so that each one brings in exactly one new
// table reachable from base.
func (c Clause) Apply(tx *gorm.DB, base string) *gorm.DB {
	for _, j := range orderJoins(base, c.joins) {
		tx = tx.Joins(fmt.Sprintf("JOIN %s ON %s", j.table, j.on))
	}
	if c.cond != "" {
		tx = tx.Where(c.cond, c.args...)
	}
	return tx
}

func dedupJoins(joins []Join) []Join {
	seen := make(map[[2]string]bool, len(joins))
	out := make([]Join, 0, len(joins))
	for _, j := range joins {
		if j.Left == "" || j.Right == "" || j.Left == j.Right {
			panic(fmt.Sprintf("filters: invalid join %s <-> %s", j.Left, j.Right))
		}
		if seen[j.key()] {
			continue
		}
		seen[j.key()] = true
		out = append(out, j)
	}
	return out
}

// mustBeTree panics when the join graph is disconnected or cyclic.
func mustBeTree(joins []Join) {
	if len(joins) == 0 {
		return
	}
	reached := map[string]bool{joins[0].Left: true}
	pending := append([]Join(nil), joins...)
	for len(pending) > 0 {
		progressed := false
		rest := pending[:0]
		for _, j := range pending {
			l, r := reached[j.Left], reached[j.Right]
			switch {
			case l && r:
				panic(fmt.Sprintf("filters: join %s <-> %s closes a cycle", j.Left, j.Right))
			case l || r:
				reached[j.Left], reached[j.Right] = true, true
				progressed = true
			default:
				rest = append(rest, j)
			}
		}
		pending = rest
		if !progressed && len(pending) > 0 {
			panic(fmt.Sprintf("filters: join %s <-> %s is not connected to the rest", pending[0].Left, pending[0].Right))
		}
	}
}

type renderedJoin struct {
	table string
	on    string
}

func orderJoins(base string, joins []Join) []renderedJoin {
	inScope := map[string]bool{base: true}
	out := make([]renderedJoin, 0, len(joins))
	pending := joins
	for len(pending) > 0 {
		var rest []Join
		for _, j := range pending {
			switch {
			case inScope[j.Left] && !inScope[j.Right], inScope[j.Right] && !inScope[j.Left]:
				t := j.Right
				if inScope[j.Right] {
					t = j.Left
				}
				inScope[t] = true
				out = append(out, renderedJoin{table: t, on: j.On})
			case inScope[j.Left] && inScope[j.Right]:
				panic(fmt.Sprintf("filters: join %s <-> %s rejoins a table already in %s query", j.Left, j.Right, base))
			default:
				rest = append(rest, j)
			}
		}
		if len(rest) == len(pending) {
			panic(fmt.Sprintf("filters: join %s <-> %s is unreachable from %s", rest[0].Left, rest[0].Right, base))
		}
		pending = rest
	}
	return out
}

// QuerySpec wraps an optional clause. The zero value matches every row.
type QuerySpec struct {
	Where *Clause
}

func Query(c Clause) QuerySpec { return QuerySpec{Where: &c} }

func (q QuerySpec) Apply(tx *gorm.DB, base string) *gorm.DB {
	if q.Where == nil {
		return tx
	}
	return q.Where.Apply(tx, base)
}

// And narrows q with c.
func (q QuerySpec) And(c Clause) QuerySpec {
	if q.Where == nil {
		return Query(c)
	}
	return Query(And(*q.Where, c))
}

// Joins along the ownership chain fabric -> vlan -> subnet -> children.
var (
	SubnetToVLAN       = Join{Left: "subnets", Right: "vlans", On: "vlans.id = subnets.vlan_id"}
	VLANToFabric       = Join{Left: "vlans", Right: "fabrics", On: "fabrics.id = vlans.fabric_id"}
	IPRangeToSubnet    = Join{Left: "ipranges", Right: "subnets", On: "subnets.id = ipranges.subnet_id"}
	ReservedIPToSubnet = Join{Left: "reservedips", Right: "subnets", On: "subnets.id = reservedips.subnet_id"}
	StaticIPToSubnet   = Join{Left: "staticipaddresses", Right: "subnets", On: "subnets.id = staticipaddresses.subnet_id"}
)
