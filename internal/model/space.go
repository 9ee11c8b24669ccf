package model

import "time"

// Space represents a bookable physical resource (room, hall, venue)
// as stored in the `spaces` table.  Spaces are read-mostly reference
// data owned by the catalog; reservations reference them by ID.
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – unique space name (case-sensitive exact match).
//	Description – optional description of the space.
//	Capacity    – number of people the space holds.
//	TypeID      – reference to the space's type.
//	Photos      – optional photo references (URL or JSON string).
//	Status      – active flag; nil when never set.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type Space struct {
	ID          uint64    // spaces.id
	Name        string    // spaces.name
	Description *string   // spaces.description (nullable)
	Capacity    int32     // spaces.capacity
	TypeID      uint64    // spaces.type_id
	Photos      *string   // spaces.photos (nullable)
	Status      *bool     // spaces.status (nullable active flag)
	CreatedAt   time.Time // spaces.created_at
	UpdatedAt   time.Time // spaces.updated_at
}

// SpaceType is a row in the `types` table.  Every space references
// exactly one type (e.g. hall, auditorium, meeting room).
//
// Fields:
//
//	ID   – numeric identifier of the type.
//	Name – type name.
type SpaceType struct {
	ID   uint64 `json:"id"`   // types.id
	Name string `json:"name"` // types.name
}
