package listing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Owujuah/apex-living/internal/models"
)

type CreateListingRequest struct {
	Kind        string          `json:"kind" binding:"required,oneof=property vehicle"`
	Title       string          `json:"title" binding:"max=255"`
	Description string          `json:"description"`
	Location    string          `json:"location" binding:"max=255"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	ImageURL    string          `json:"image_url" binding:"max=500"`

	Bedrooms  int     `json:"bedrooms"`
	Bathrooms int     `json:"bathrooms"`
	Area      float64 `json:"area"`

	Brand   string  `json:"brand" binding:"max=100"`
	Model   string  `json:"model" binding:"max=100"`
	Year    int     `json:"year"`
	Mileage float64 `json:"mileage"`
}

type UpdateListingRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Location    *string          `json:"location"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url"`
	Bedrooms    *int             `json:"bedrooms"`
	Bathrooms   *int             `json:"bathrooms"`
	Area        *float64         `json:"area"`
	Brand       *string          `json:"brand"`
	Model       *string          `json:"model"`
	Year        *int             `json:"year"`
	Mileage     *float64         `json:"mileage"`
}

type ListingResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
	SellerID    string          `json:"seller_id"`
	ReservedBy  string          `json:"reserved_by,omitempty"`
	ImageURL    string          `json:"image_url"`
	Bedrooms    int             `json:"bedrooms,omitempty"`
	Bathrooms   int             `json:"bathrooms,omitempty"`
	Area        float64         `json:"area,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Model       string          `json:"model,omitempty"`
	Year        int             `json:"year,omitempty"`
	Mileage     float64         `json:"mileage,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ListingListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

func toResponse(l *models.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		Kind:        string(l.Kind),
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		Price:       l.Price,
		Status:      string(l.Status),
		SellerID:    l.SellerID,
		ReservedBy:  l.ReservedBy,
		ImageURL:    l.ImageURL,
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		Area:        l.Area,
		Brand:       l.Brand,
		Model:       l.Model,
		Year:        l.Year,
		Mileage:     l.Mileage,
		CreatedAt:   l.CreatedAt,
	}
}
