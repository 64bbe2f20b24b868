package public

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bazar-next/internal/http/response"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"
	"github.com/bazar-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListingCreateRequest 发布商品请求
type ListingCreateRequest struct {
	Title    string `json:"title" binding:"required"`
	Price    string `json:"price" binding:"required"`
	Currency string `json:"currency"`
}

// TimerBarRequest 倒计时条设置请求
type TimerBarRequest struct {
	Enabled bool   `json:"enabled"`
	Title   string `json:"title"`
	Color   string `json:"color"`
	EndsAt  string `json:"ends_at"`
}

// GetListings 分页查询商品列表
func (h *Handler) GetListings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	storeID, _ := strconv.ParseUint(c.Query("store_id"), 10, 64)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	listings, total, err := h.ListingService.ListVisible(repository.ListingListFilter{
		UserID:   uint(userID),
		StoreID:  uint(storeID),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Page:     page,
		PageSize: pageSize,
	}, time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, listings, response.BuildPagination(page, pageSize, total))
}

// GetListing 查询商品详情，附带解析后的有效价格
func (h *Handler) GetListing(c *gin.Context) {
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || listingID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	listing, err := h.ListingService.GetVisible(uint(listingID), time.Now())
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			respondError(c, response.CodeNotFound, "error.listing_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	price, err := h.PricingService.ResolveForListing(listing.ID, time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"listing": listing,
		"price":   price,
	})
}

// GetListingPrice 查询商品的有效价格
func (h *Handler) GetListingPrice(c *gin.Context) {
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || listingID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	price, err := h.PricingService.ResolveForListing(uint(listingID), time.Now())
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			respondError(c, response.CodeNotFound, "error.listing_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, price)
}

// CreateListing 发布商品
func (h *Handler) CreateListing(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ListingCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	listing, err := h.ListingService.Create(service.ListingCreateInput{
		UserID:   uid,
		Title:    req.Title,
		Price:    models.NewMoneyFromDecimal(price),
		Currency: req.Currency,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.create_failed", err)
		return
	}
	response.Success(c, listing)
}

// DeleteListing 删除商品
func (h *Handler) DeleteListing(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || listingID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.ListingService.Delete(uint(listingID), uid); err != nil {
		switch {
		case errors.Is(err, service.ErrListingNotFound):
			respondError(c, response.CodeNotFound, "error.listing_not_found", nil)
		case errors.Is(err, service.ErrNotOwner):
			respondError(c, response.CodeForbidden, "error.not_owner", nil)
		default:
			respondError(c, response.CodeInternal, "error.delete_failed", err)
		}
		return
	}
	response.Success(c, nil)
}

// SetListingTimerBar 设置商品倒计时条
func (h *Handler) SetListingTimerBar(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || listingID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req TimerBarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var endsAt *time.Time
	if strings.TrimSpace(req.EndsAt) != "" {
		parsed, parseErr := time.Parse(time.RFC3339, strings.TrimSpace(req.EndsAt))
		if parseErr != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", parseErr)
			return
		}
		endsAt = &parsed
	}
	listing, err := h.DiscountService.SetTimerBar(service.TimerBarInput{
		UserID:    uid,
		ListingID: uint(listingID),
		Enabled:   req.Enabled,
		Title:     strings.TrimSpace(req.Title),
		Color:     strings.TrimSpace(req.Color),
		EndsAt:    endsAt,
	}, time.Now())
	if err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, listing)
}
