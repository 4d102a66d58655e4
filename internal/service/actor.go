package service

import (
	"github.com/google/uuid"

	"github.com/01moynul/carlisting-golang/internal/models"
)

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	ID          uuid.UUID
	IsSuperuser bool
}

// canModify is the single ownership rule: superusers may touch any item,
// everyone else only their own listings.
func (a Actor) canModify(item *models.Item) bool {
	return a.IsSuperuser || item.SellerID == a.ID
}
