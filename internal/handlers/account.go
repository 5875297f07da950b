package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cloudbite/internal/middleware"
	"cloudbite/internal/models"
	"cloudbite/internal/storage"
)

// AccountHandler serves the logged-in customer's addresses and reviews.
// Mutating routes run behind JWTAuth; the review listing is public.
type AccountHandler struct {
	store storage.Storage
}

func NewAccountHandler(store storage.Storage) *AccountHandler {
	return &AccountHandler{store: store}
}

type AddressRequest struct {
	Type         string  `json:"type" binding:"required"`
	AddressLine1 string  `json:"addressLine1" binding:"required"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city" binding:"required"`
	State        string  `json:"state" binding:"required"`
	PostalCode   string  `json:"postalCode" binding:"required"`
	Landmark     *string `json:"landmark,omitempty"`
	IsDefault    bool    `json:"isDefault"`
}

func (h *AccountHandler) ListAddresses(c *gin.Context) {
	claims := middleware.GetClaims(c)
	addresses, err := h.store.GetUserAddresses(claims.UserID)
	if err != nil {
		writeError(c, err, "Address not found")
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (h *AccountHandler) CreateAddress(c *gin.Context) {
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	claims := middleware.GetClaims(c)
	address, err := h.store.CreateAddress(models.Address{
		UserID:       claims.UserID,
		Type:         req.Type,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Landmark:     req.Landmark,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		writeError(c, err, "Address not found")
		return
	}
	c.JSON(http.StatusCreated, address)
}

// ownsAddress guards updates and deletes to another user's address.
func (h *AccountHandler) ownsAddress(userID, addressID string) (bool, error) {
	addresses, err := h.store.GetUserAddresses(userID)
	if err != nil {
		return false, err
	}
	for _, address := range addresses {
		if address.ID == addressID {
			return true, nil
		}
	}
	return false, nil
}

func (h *AccountHandler) UpdateAddress(c *gin.Context) {
	var patch models.AddressPatch
	if err := bindPatch(c, &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	claims := middleware.GetClaims(c)
	owns, err := h.ownsAddress(claims.UserID, c.Param("id"))
	if err != nil {
		writeError(c, err, "Address not found")
		return
	}
	if !owns {
		c.JSON(http.StatusNotFound, gin.H{"message": "Address not found"})
		return
	}

	address, err := h.store.UpdateAddress(c.Param("id"), patch)
	if err != nil {
		writeError(c, err, "Address not found")
		return
	}
	c.JSON(http.StatusOK, address)
}

func (h *AccountHandler) DeleteAddress(c *gin.Context) {
	claims := middleware.GetClaims(c)
	owns, err := h.ownsAddress(claims.UserID, c.Param("id"))
	if err != nil {
		writeError(c, err, "Address not found")
		return
	}
	if owns {
		if err := h.store.DeleteAddress(c.Param("id")); err != nil {
			writeError(c, err, "Address not found")
			return
		}
	}
	c.Status(http.StatusNoContent)
}

type ReviewRequest struct {
	OrderID    string  `json:"orderId" binding:"required"`
	MenuItemID *string `json:"menuItemId,omitempty"`
	Rating     int     `json:"rating" binding:"required,min=1,max=5"`
	Comment    *string `json:"comment,omitempty"`
}

func (h *AccountHandler) ListReviews(c *gin.Context) {
	reviews, err := h.store.GetReviews(storage.ReviewFilters{
		MenuItemID: c.Query("menuItemId"),
		UserID:     c.Query("userId"),
	})
	if err != nil {
		writeError(c, err, "Review not found")
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *AccountHandler) CreateReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	claims := middleware.GetClaims(c)
	review, err := h.store.CreateReview(models.Review{
		UserID:     claims.UserID,
		OrderID:    req.OrderID,
		MenuItemID: req.MenuItemID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		writeError(c, err, "Review not found")
		return
	}
	c.JSON(http.StatusCreated, review)
}
