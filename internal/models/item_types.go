package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Item is the model for the 'items' table: one used-vehicle listing.
// Pointers mark nullable columns so they serialize as JSON null.
type Item struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`

	// --- Vehicle ---
	Year         *int     `json:"year" db:"year"`
	SellingPrice *float64 `json:"selling_price" db:"selling_price"`
	KmDriven     *float64 `json:"km_driven" db:"km_driven"`
	FuelType     *string  `json:"fuel_type" db:"fuel_type"`
	Transmission *string  `json:"transmission" db:"transmission"`
	OwnerType    *string  `json:"owner_type" db:"owner_type"`
	Mileage      *float64 `json:"mileage" db:"mileage"`
	Engine       *string  `json:"engine" db:"engine"`
	MaxPower     *float64 `json:"max_power" db:"max_power"`
	Torque       *string  `json:"torque" db:"torque"`
	Seats        *int     `json:"seats" db:"seats"`

	// --- Ownership & lifecycle ---
	SellerID   uuid.UUID  `json:"seller_id" db:"seller_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	SoldAt     *time.Time `json:"sold_at" db:"sold_at"`
	FinalPrice *float64   `json:"final_price" db:"final_price"`
}

// ItemAttributes is the writable part of an item, shared by create and update input.
type ItemAttributes struct {
	Year         *int     `json:"year"`
	SellingPrice *float64 `json:"selling_price" binding:"omitempty,gte=0"`
	KmDriven     *float64 `json:"km_driven" binding:"omitempty,gte=0"`
	FuelType     *string  `json:"fuel_type" binding:"omitempty,max=255"`
	Transmission *string  `json:"transmission" binding:"omitempty,max=255"`
	OwnerType    *string  `json:"owner_type" binding:"omitempty,max=255"`
	Mileage      *float64 `json:"mileage"`
	Engine       *string  `json:"engine" binding:"omitempty,max=255"`
	MaxPower     *float64 `json:"max_power"`
	Torque       *string  `json:"torque" binding:"omitempty,max=255"`
	Seats        *int     `json:"seats" binding:"omitempty,gte=0"`
}

// ItemCreate is the JSON input for POST /items.
type ItemCreate struct {
	Name string `json:"name" binding:"required,notblank,max=255"`
	ItemAttributes
}

// NewItem builds a fresh listing owned by sellerID. The item is never sold at creation.
func (in ItemCreate) NewItem(sellerID uuid.UUID, now time.Time) *Item {
	item := &Item{
		ID:        uuid.New(),
		Name:      in.Name,
		SellerID:  sellerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.ItemAttributes.applyTo(item, nil)
	return item
}

// ItemUpdate is the JSON input for PUT /items/:id. Fields missing from the
// body keep their stored value; an explicit null clears a nullable field.
type ItemUpdate struct {
	Name *string `json:"name" binding:"omitempty,notblank,max=255"`
	ItemAttributes

	// keys present in the decoded body
	present map[string]bool
}

// UnmarshalJSON decodes the fields and remembers which keys the body carried,
// so a null can be told apart from an absent key.
func (in *ItemUpdate) UnmarshalJSON(data []byte) error {
	type plain ItemUpdate
	if err := json.Unmarshal(data, (*plain)(in)); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	in.present = make(map[string]bool, len(keys))
	for k := range keys {
		in.present[k] = true
	}
	return nil
}

// Apply copies the fields the body carried onto item. name is never
// cleared since the column is required.
func (in ItemUpdate) Apply(item *Item) {
	if in.Name != nil {
		item.Name = *in.Name
	}
	in.ItemAttributes.applyTo(item, in.present)
}

// applyTo sets every non-nil attribute, and every attribute named in
// present even when nil.
func (a ItemAttributes) applyTo(item *Item, present map[string]bool) {
	assign(&item.Year, a.Year, present["year"])
	assign(&item.SellingPrice, a.SellingPrice, present["selling_price"])
	assign(&item.KmDriven, a.KmDriven, present["km_driven"])
	assign(&item.FuelType, a.FuelType, present["fuel_type"])
	assign(&item.Transmission, a.Transmission, present["transmission"])
	assign(&item.OwnerType, a.OwnerType, present["owner_type"])
	assign(&item.Mileage, a.Mileage, present["mileage"])
	assign(&item.Engine, a.Engine, present["engine"])
	assign(&item.MaxPower, a.MaxPower, present["max_power"])
	assign(&item.Torque, a.Torque, present["torque"])
	assign(&item.Seats, a.Seats, present["seats"])
}

func assign[T any](dst **T, v *T, present bool) {
	if v != nil || present {
		*dst = v
	}
}

// ItemSale is the JSON input for POST /items/:id/sell.
type ItemSale struct {
	FinalPrice *float64 `json:"final_price" binding:"omitempty,gte=0"`
}

// ItemsPublic is the list envelope returned by listing and recommendation endpoints.
type ItemsPublic struct {
	Data  []Item `json:"data"`
	Count int64  `json:"count"`
}

// ItemQuery is a transient search filter; every field is optional.
type ItemQuery struct {
	MinYear     *int     `json:"min_year"`
	MinPrice    *float64 `json:"min_price"`
	MaxPrice    *float64 `json:"max_price"`
	MaxKmDriven *float64 `json:"max_km_driven"`
	FuelType    *string  `json:"fuel_type"`
}
