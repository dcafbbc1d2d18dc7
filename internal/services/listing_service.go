package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/internal/notifier"
)

// ListingFilter defines criteria for browsing listings
type ListingFilter struct {
	Kind     *models.ListingKind
	Status   *models.ListingStatus
	SellerID *string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     int
	Limit    int
}

// CreateListingInput carries the seller-provided attributes of a new
// listing.
type CreateListingInput struct {
	Kind        models.ListingKind
	Title       string
	Description string
	Location    string
	Price       decimal.Decimal
	SellerID    string
	ImageURL    string
	Bedrooms    int
	Bathrooms   int
	Area        float64
	Brand       string
	Model       string
	Year        int
	Mileage     float64
}

type ListingService struct {
	db    *gorm.DB
	bus   *notifier.Bus
	stats *StatsService
	locks *keyedMutex
}

func NewListingService(db *gorm.DB, bus *notifier.Bus, stats *StatsService) *ListingService {
	return &ListingService{db: db, bus: bus, stats: stats, locks: recordLocks}
}

// CreateListing puts a new property or vehicle on the market.
func (s *ListingService) CreateListing(ctx context.Context, input CreateListingInput) (*models.Listing, error) {
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	listing := models.Listing{
		ID:          uuid.New().String(),
		Kind:        input.Kind,
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Price:       input.Price,
		Status:      models.ListingStatusOpen,
		SellerID:    input.SellerID,
		ImageURL:    input.ImageURL,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
		Area:        input.Area,
		Brand:       input.Brand,
		Model:       input.Model,
		Year:        input.Year,
		Mileage:     input.Mileage,
	}

	var stats *models.PlatformStats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&listing).Error; err != nil {
			return err
		}
		var err error
		stats, err = refreshPlatformStats(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, notifier.Event{Kind: notifier.KindListing, Op: notifier.OpCreated, ID: listing.ID, Payload: &listing}, stats)
	return &listing, nil
}

// UpdateListing applies seller edits to an open listing. Status and
// reservation fields are owned by the contract manager and cannot be
// changed here.
func (s *ListingService) UpdateListing(ctx context.Context, listingID string, updates map[string]interface{}) (*models.Listing, error) {
	delete(updates, "status")
	delete(updates, "reserved_by")
	delete(updates, "reserved_at")
	updates["updated_at"] = time.Now()

	unlock := s.locks.Lock("listing:" + listingID)
	defer unlock()

	var listing models.Listing
	var stats *models.PlatformStats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&listing, "id = ?", listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return err
		}
		if listing.Status != models.ListingStatusOpen {
			return ErrListingNotOpen
		}
		if err := tx.Model(&listing).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&listing, "id = ?", listingID).Error; err != nil {
			return err
		}
		var err error
		stats, err = refreshPlatformStats(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, notifier.Event{Kind: notifier.KindListing, Op: notifier.OpUpdated, ID: listing.ID, Payload: &listing}, stats)
	return &listing, nil
}

// DeleteListing withdraws an open listing from the market. Reserved and
// sold listings carry contracts and cannot be deleted.
func (s *ListingService) DeleteListing(ctx context.Context, listingID string) error {
	unlock := s.locks.Lock("listing:" + listingID)
	defer unlock()

	var stats *models.PlatformStats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.First(&listing, "id = ?", listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return err
		}
		if listing.Status != models.ListingStatusOpen {
			return ErrListingNotOpen
		}
		if err := tx.Delete(&listing).Error; err != nil {
			return err
		}
		var err error
		stats, err = refreshPlatformStats(tx)
		return err
	})
	if err != nil {
		return err
	}

	s.afterWrite(ctx, notifier.Event{Kind: notifier.KindListing, Op: notifier.OpDeleted, ID: listingID}, stats)
	return nil
}

// GetListing returns one listing by id.
func (s *ListingService) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.WithContext(ctx).First(&listing, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// FindListings retrieves a paginated, filtered page of listings.
func (s *ListingService) FindListings(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error) {
	var listings []models.Listing
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Listing{})

	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

func (s *ListingService) afterWrite(ctx context.Context, e notifier.Event, stats *models.PlatformStats) {
	if s.bus != nil {
		s.bus.Publish(e)
		if stats != nil {
			s.bus.Publish(notifier.Event{Kind: notifier.KindStats, Op: notifier.OpUpdated, ID: "global", Payload: stats})
		}
	}
	if s.stats != nil && stats != nil {
		s.stats.cache(ctx, stats)
	}
}
