package listing

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Owujuah/apex-living/internal/middleware"
	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/internal/services"
	"github.com/Owujuah/apex-living/internal/utils"
	"github.com/Owujuah/apex-living/pkg/logger"
)

type Handler struct {
	listings *services.ListingService
}

func NewHandler(listings *services.ListingService) *Handler {
	return &Handler{listings: listings}
}

// Browse returns a paginated page of listings filtered by the query
// string. Open to unauthenticated callers.
func (h *Handler) Browse(c *gin.Context) {
	filter := services.ListingFilter{}

	if kind := c.Query("kind"); kind != "" {
		k := models.ListingKind(kind)
		filter.Kind = &k
	}
	if status := c.Query("status"); status != "" {
		s := models.ListingStatus(status)
		filter.Status = &s
	}
	if sellerID := c.Query("seller_id"); sellerID != "" {
		filter.SellerID = &sellerID
	}
	if minPrice := c.Query("min_price"); minPrice != "" {
		if v, err := decimal.NewFromString(minPrice); err == nil {
			filter.MinPrice = &v
		}
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if v, err := decimal.NewFromString(maxPrice); err == nil {
			filter.MaxPrice = &v
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	listings, total, err := h.listings.FindListings(c.Request.Context(), filter)
	if err != nil {
		logger.Error("failed to browse listings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve listings"))
		return
	}

	responses := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		responses = append(responses, toResponse(&listings[i]))
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Listings retrieved successfully", ListingListResponse{
		Listings: responses,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}))
}

// Get returns one listing by id.
func (h *Handler) Get(c *gin.Context) {
	listing, err := h.listings.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve listing"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Listing retrieved successfully", toResponse(listing)))
}

// Create puts a new listing on the market with the caller as seller.
func (h *Handler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req CreateListingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	listing, err := h.listings.CreateListing(c.Request.Context(), services.CreateListingInput{
		Kind:        models.ListingKind(req.Kind),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Price:       req.Price,
		SellerID:    user.ID,
		ImageURL:    req.ImageURL,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Area:        req.Area,
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		Mileage:     req.Mileage,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Price must be greater than zero"))
			return
		}
		logger.Error("failed to create listing", zap.Error(err), zap.String("seller_id", user.ID))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create listing"))
		return
	}
	c.JSON(http.StatusCreated, utils.NewResponse(http.StatusCreated, "Listing created successfully", toResponse(listing)))
}

// Update applies seller edits to an open listing. Only the owner or an
// admin may edit.
func (h *Handler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	listingID := c.Param("id")
	existing, err := h.listings.GetListing(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve listing"))
		return
	}
	if existing.SellerID != user.ID && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Only the seller can modify this listing"))
		return
	}

	var req UpdateListingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	updates := updatesFrom(req)
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "No fields to update"))
		return
	}

	listing, err := h.listings.UpdateListing(c.Request.Context(), listingID, updates)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
		case errors.Is(err, services.ErrListingNotOpen):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Reserved or sold listings cannot be modified"))
		default:
			logger.Error("failed to update listing", zap.Error(err), zap.String("listing_id", listingID))
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update listing"))
		}
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Listing updated successfully", toResponse(listing)))
}

// Delete withdraws an open listing from the market.
func (h *Handler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Authentication required"))
		return
	}

	listingID := c.Param("id")
	existing, err := h.listings.GetListing(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve listing"))
		return
	}
	if existing.SellerID != user.ID && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Only the seller can delete this listing"))
		return
	}

	if err := h.listings.DeleteListing(c.Request.Context(), listingID); err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
		case errors.Is(err, services.ErrListingNotOpen):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Reserved or sold listings cannot be deleted"))
		default:
			logger.Error("failed to delete listing", zap.Error(err), zap.String("listing_id", listingID))
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to delete listing"))
		}
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Listing deleted successfully", nil))
}

func updatesFrom(req UpdateListingRequest) map[string]interface{} {
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Bedrooms != nil {
		updates["bedrooms"] = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		updates["bathrooms"] = *req.Bathrooms
	}
	if req.Area != nil {
		updates["area"] = *req.Area
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.Year != nil {
		updates["year"] = *req.Year
	}
	if req.Mileage != nil {
		updates["mileage"] = *req.Mileage
	}
	return updates
}
