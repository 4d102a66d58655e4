// Package filter builds composable predicates over item columns.
//
// A Predicate starts out matching every row and narrows with each And. It
// renders to a parameterised SQL WHERE fragment for the MySQL store and can
// also be evaluated against an item in memory.
package filter

import (
	"fmt"
	"strings"

	"github.com/01moynul/carlisting-golang/internal/models"
)

// Field is an item column that may appear in a predicate.
type Field string

const (
	Year         Field = "year"
	SellingPrice Field = "selling_price"
	KmDriven     Field = "km_driven"
	FuelType     Field = "fuel_type"
	SellerID     Field = "seller_id"
)

// Op is a comparison operator.
type Op string

const (
	Eq  Op = "="
	Gte Op = ">="
	Lte Op = "<="
)

// Condition is a single "field op value" clause.
type Condition struct {
	Field Field
	Op    Op
	Value any
}

// Predicate is a conjunction of conditions. The zero value matches everything.
type Predicate struct {
	conds []Condition
}

// All returns the always-true predicate.
func All() Predicate {
	return Predicate{}
}

// And returns a new predicate with one more clause; p itself is unchanged.
func (p Predicate) And(field Field, op Op, value any) Predicate {
	conds := make([]Condition, len(p.conds), len(p.conds)+1)
	copy(conds, p.conds)
	return Predicate{conds: append(conds, Condition{Field: field, Op: op, Value: value})}
}

func (p Predicate) Conditions() []Condition {
	return p.conds
}

// IsAll reports whether p has no clauses.
func (p Predicate) IsAll() bool {
	return len(p.conds) == 0
}

// SQL renders the predicate as a WHERE fragment with '?' placeholders.
// Column names are qualified with alias when it is not empty.
func (p Predicate) SQL(alias string) (string, []any, error) {
	if len(p.conds) == 0 {
		return "1 = 1", nil, nil
	}

	clauses := make([]string, 0, len(p.conds))
	args := make([]any, 0, len(p.conds))
	for _, c := range p.conds {
		if !c.Field.valid() {
			return "", nil, fmt.Errorf("unknown filter field %q", c.Field)
		}
		if !c.Op.valid() {
			return "", nil, fmt.Errorf("unknown filter operator %q", c.Op)
		}
		column := string(c.Field)
		if alias != "" {
			column = alias + "." + column
		}
		clauses = append(clauses, fmt.Sprintf("%s %s ?", column, c.Op))
		args = append(args, c.Value)
	}
	return strings.Join(clauses, " AND "), args, nil
}

func (f Field) valid() bool {
	switch f {
	case Year, SellingPrice, KmDriven, FuelType, SellerID:
		return true
	}
	return false
}

func (o Op) valid() bool {
	switch o {
	case Eq, Gte, Lte:
		return true
	}
	return false
}

// FromQuery conjoins one clause per present ItemQuery field.
func FromQuery(q models.ItemQuery) Predicate {
	p := All()
	if q.MinYear != nil {
		p = p.And(Year, Gte, *q.MinYear)
	}
	if q.MinPrice != nil {
		p = p.And(SellingPrice, Gte, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		p = p.And(SellingPrice, Lte, *q.MaxPrice)
	}
	if q.MaxKmDriven != nil {
		p = p.And(KmDriven, Lte, *q.MaxKmDriven)
	}
	if q.FuelType != nil {
		p = p.And(FuelType, Eq, *q.FuelType)
	}
	return p
}
