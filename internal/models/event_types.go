package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the model for the append-only 'events' table.
type Event struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     *uuid.UUID `json:"user_id" db:"user_id"`
	ItemID     *uuid.UUID `json:"item_id" db:"item_id"`
	EventType  string     `json:"event_type" db:"event_type"`
	EventValue EventValue `json:"event_value" db:"event_value"`
	Timestamp  time.Time  `json:"timestamp" db:"timestamp"`
}

// EventCreate is the JSON input for POST /events.
type EventCreate struct {
	UserID     *uuid.UUID `json:"user_id"`
	ItemID     *uuid.UUID `json:"item_id"`
	EventType  string     `json:"event_type" binding:"required,notblank,max=255"`
	EventValue EventValue `json:"event_value"`
}

// EventValue is the free-form payload stored in a JSON column. A nil map is NULL.
type EventValue map[string]any

func (v EventValue) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (v *EventValue) Scan(src any) error {
	var data []byte
	switch s := src.(type) {
	case nil:
		*v = nil
		return nil
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return fmt.Errorf("unsupported event_value type %T", src)
	}
	if len(data) == 0 || string(data) == "null" {
		*v = nil
		return nil
	}
	return json.Unmarshal(data, (*map[string]any)(v))
}

// ItemPopularity is one row of the per-item event count.
type ItemPopularity struct {
	ItemID     uuid.UUID `json:"item_id" db:"item_id"`
	EventCount int64     `json:"event_count" db:"event_count"`
}
