package models

import (
	"time"

	"github.com/lib/pq"
)

// RoomType represents the category of a room
type RoomType string

const (
	RoomTypeStandard RoomType = "STANDARD"
	RoomTypeDeluxe   RoomType = "DELUXE"
	RoomTypeSuite    RoomType = "SUITE"
)

// RoomTypeInfo holds display metadata for a room type
type RoomTypeInfo struct {
	Type        RoomType `json:"type"`
	Title       string   `json:"title"`
	BasePrice   float64  `json:"base_price"`
	Description string   `json:"description"`
}

var roomTypeCatalog = []RoomTypeInfo{
	{
		Type:        RoomTypeStandard,
		Title:       "Standard Room",
		BasePrice:   89.99,
		Description: "Comfortable room with essential amenities",
	},
	{
		Type:        RoomTypeDeluxe,
		Title:       "Deluxe Room",
		BasePrice:   149.99,
		Description: "Spacious room with premium amenities",
	},
	{
		Type:        RoomTypeSuite,
		Title:       "Suite",
		BasePrice:   249.99,
		Description: "Separate living area with luxury amenities",
	},
}

// RoomTypes returns display metadata for every room type
func RoomTypes() []RoomTypeInfo {
	out := make([]RoomTypeInfo, len(roomTypeCatalog))
	copy(out, roomTypeCatalog)
	return out
}

// IsValid reports whether t is a known room type
func (t RoomType) IsValid() bool {
	_, ok := t.Info()
	return ok
}

// Info returns the display metadata for t
func (t RoomType) Info() (RoomTypeInfo, bool) {
	for _, info := range roomTypeCatalog {
		if info.Type == t {
			return info, true
		}
	}
	return RoomTypeInfo{}, false
}

// RoomStatus represents the operational availability of a room
type RoomStatus string

const (
	RoomStatusAvailable    RoomStatus = "AVAILABLE"
	RoomStatusOccupied     RoomStatus = "OCCUPIED"
	RoomStatusCleaning     RoomStatus = "CLEANING"
	RoomStatusDoNotDisturb RoomStatus = "DO_NOT_DISTURB"
)

// IsValid reports whether s is a known room status
func (s RoomStatus) IsValid() bool {
	switch s {
	case RoomStatusAvailable, RoomStatusOccupied, RoomStatusCleaning, RoomStatusDoNotDisturb:
		return true
	}
	return false
}

// Room represents a physical hotel room (rooms table)
type Room struct {
	ID            string         `json:"id" db:"id"`
	Number        string         `json:"number" db:"number"`
	Type          RoomType       `json:"type" db:"type"`
	Status        RoomStatus     `json:"status" db:"status"`
	PricePerNight float64        `json:"price_per_night" db:"price_per_night"`
	Features      pq.StringArray `json:"features" db:"features"`
	Description   string         `json:"description" db:"description"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateRoomRequest represents a staff request to add a room
type CreateRoomRequest struct {
	Number        string     `json:"number"`
	Type          RoomType   `json:"type"`
	Status        RoomStatus `json:"status,omitempty"`
	PricePerNight *float64   `json:"price_per_night"`
	Features      []string   `json:"features,omitempty"`
	Description   string     `json:"description,omitempty"`
}

// UpdateRoomStatusRequest represents a staff override of a room's status
type UpdateRoomStatusRequest struct {
	Status RoomStatus `json:"status" binding:"required"`
}
