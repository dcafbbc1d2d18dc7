package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ListingKind string

const (
	ListingKindProperty ListingKind = "property"
	ListingKindVehicle  ListingKind = "vehicle"
)

type ListingStatus string

const (
	ListingStatusOpen     ListingStatus = "open"
	ListingStatusReserved ListingStatus = "reserved"
	ListingStatusSold     ListingStatus = "sold"
)

// Listing is a property or vehicle offered for sale. Both kinds share one
// lifecycle (open -> reserved -> sold); the kind-specific attribute sets
// live side by side and are zero for the other kind.
type Listing struct {
	ID          string      `gorm:"primarykey;type:varchar(36)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Kind        ListingKind   `gorm:"type:varchar(20);index;not null"`
	Title       string        `gorm:"type:varchar(255);not null"`
	Description string        `gorm:"type:text"`
	Location    string        `gorm:"type:varchar(255)"`
	Price       decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Status      ListingStatus `gorm:"type:varchar(20);index;not null;default:'open'"`
	SellerID    string        `gorm:"type:varchar(36);index"`
	ReservedBy  string        `gorm:"type:varchar(36);index;default:''"`
	ReservedAt  *time.Time
	ImageURL    string `gorm:"type:varchar(500)"`

	// Property fields
	Bedrooms  int     `gorm:"default:0"`
	Bathrooms int     `gorm:"default:0"`
	Area      float64 `gorm:"default:0"`

	// Vehicle fields
	Brand   string `gorm:"type:varchar(100)"`
	Model   string `gorm:"type:varchar(100)"`
	Year    int    `gorm:"default:0"`
	Mileage float64 `gorm:"default:0"`
}

// Label returns the display name used on contracts and transactions:
// the title for properties, brand + model for vehicles.
func (l *Listing) Label() string {
	if l.Kind == ListingKindVehicle && l.Brand != "" {
		return l.Brand + " " + l.Model
	}
	return l.Title
}
