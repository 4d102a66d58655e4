package filter

import (
	"github.com/google/uuid"

	"github.com/01moynul/carlisting-golang/internal/models"
)

// Match evaluates p against item in memory with the same semantics as the
// SQL rendering: a NULL column never satisfies a comparison, and strings
// compare byte for byte as the binary-collated fuel_type column does. The
// in-memory item stores in the recommender and service tests filter with it.
func (p Predicate) Match(item *models.Item) bool {
	for _, c := range p.conds {
		if !c.match(item) {
			return false
		}
	}
	return true
}

func (c Condition) match(item *models.Item) bool {
	switch c.Field {
	case Year:
		if item.Year == nil {
			return false
		}
		return compareFloat(float64(*item.Year), c.Op, toFloat(c.Value))
	case SellingPrice:
		if item.SellingPrice == nil {
			return false
		}
		return compareFloat(*item.SellingPrice, c.Op, toFloat(c.Value))
	case KmDriven:
		if item.KmDriven == nil {
			return false
		}
		return compareFloat(*item.KmDriven, c.Op, toFloat(c.Value))
	case FuelType:
		s, ok := c.Value.(string)
		return ok && c.Op == Eq && item.FuelType != nil && *item.FuelType == s
	case SellerID:
		id, ok := c.Value.(uuid.UUID)
		return ok && c.Op == Eq && item.SellerID == id
	}
	return false
}

func compareFloat(a float64, op Op, b float64) bool {
	switch op {
	case Eq:
		return a == b
	case Gte:
		return a >= b
	case Lte:
		return a <= b
	}
	return false
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}
