package public

import (
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

// DiscountRequest 折扣创建/更新请求
type DiscountRequest struct {
	StoreID            uint   `json:"store_id" binding:"required"`
	Title              string `json:"title" binding:"required"`
	Description        string `json:"description"`
	Type               string `json:"type" binding:"required"`
	Value              string `json:"value" binding:"required"`
	MinPurchaseAmount  string `json:"min_purchase_amount"`
	MaxDiscountAmount  string `json:"max_discount_amount"`
	ApplicableListings []uint `json:"applicable_listings" binding:"required"`
	StartsAt           string `json:"starts_at" binding:"required"`
	EndsAt             string `json:"ends_at" binding:"required"`
	UsageLimit         int    `json:"usage_limit"`
}

// CampaignRequest 活动创建请求
type CampaignRequest struct {
	StoreID            uint   `json:"store_id" binding:"required"`
	Title              string `json:"title" binding:"required"`
	Description        string `json:"description"`
	Type               string `json:"type" binding:"required"`
	Value              string `json:"value" binding:"required"`
	MaxDiscountAmount  string `json:"max_discount_amount"`
	ApplicableListings []uint `json:"applicable_listings" binding:"required"`
	StartsAt           string `json:"starts_at" binding:"required"`
	EndsAt             string `json:"ends_at" binding:"required"`
	UsageLimit         int    `json:"usage_limit"`
}

func (req *DiscountRequest) toInput(userID uint) (service.DiscountCreateInput, error) {
	value, err := parseMoneyField(req.Value)
	if err != nil {
		return service.DiscountCreateInput{}, err
	}
	minPurchase, err := parseOptionalMoneyField(req.MinPurchaseAmount)
	if err != nil {
		return service.DiscountCreateInput{}, err
	}
	maxDiscount, err := parseOptionalMoneyField(req.MaxDiscountAmount)
	if err != nil {
		return service.DiscountCreateInput{}, err
	}
	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartsAt))
	if err != nil {
		return service.DiscountCreateInput{}, err
	}
	endsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndsAt))
	if err != nil {
		return service.DiscountCreateInput{}, err
	}
	return service.DiscountCreateInput{
		UserID:             userID,
		StoreID:            req.StoreID,
		Title:              strings.TrimSpace(req.Title),
		Description:        strings.TrimSpace(req.Description),
		Type:               strings.TrimSpace(req.Type),
		Value:              value,
		MinPurchaseAmount:  minPurchase,
		MaxDiscountAmount:  maxDiscount,
		ApplicableListings: models.IDList(req.ApplicableListings),
		StartsAt:           startsAt,
		EndsAt:             endsAt,
		UsageLimit:         req.UsageLimit,
	}, nil
}

// CreateDiscount 创建店铺折扣
func (h *Handler) CreateDiscount(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput(uid)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	discount, err := h.DiscountService.CreateDiscount(input, time.Now())
	if err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, discount)
}

// UpdateDiscount 更新店铺折扣
func (h *Handler) UpdateDiscount(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	discountID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || discountID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput(uid)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	discount, err := h.DiscountService.UpdateDiscount(uint(discountID), input, time.Now())
	if err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, discount)
}

// DeleteDiscount 删除店铺折扣
func (h *Handler) DeleteDiscount(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	discountID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || discountID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.DiscountService.DeleteDiscount(uint(discountID), uid); err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetStoreDiscounts 分页查询店铺折扣
func (h *Handler) GetStoreDiscounts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	storeID, _ := strconv.ParseUint(c.Query("store_id"), 10, 64)

	discounts, total, err := h.DiscountService.ListDiscounts(repository.DiscountListFilter{
		StoreID:  uint(storeID),
		Type:     strings.TrimSpace(c.Query("type")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, discounts, response.BuildPagination(page, pageSize, total))
}

// CreateCampaign 创建店铺活动
func (h *Handler) CreateCampaign(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	value, err := parseMoneyField(req.Value)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	maxDiscount, err := parseOptionalMoneyField(req.MaxDiscountAmount)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartsAt))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	endsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndsAt))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	campaign, err := h.DiscountService.CreateCampaign(service.CampaignCreateInput{
		UserID:             uid,
		StoreID:            req.StoreID,
		Title:              strings.TrimSpace(req.Title),
		Description:        strings.TrimSpace(req.Description),
		Type:               strings.TrimSpace(req.Type),
		Value:              value,
		MaxDiscountAmount:  maxDiscount,
		ApplicableListings: models.IDList(req.ApplicableListings),
		StartsAt:           startsAt,
		EndsAt:             endsAt,
		UsageLimit:         req.UsageLimit,
	}, time.Now())
	if err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, campaign)
}

// GetStoreCampaigns 分页查询店铺活动
func (h *Handler) GetStoreCampaigns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	storeID, _ := strconv.ParseUint(c.Query("store_id"), 10, 64)

	campaigns, total, err := h.DiscountService.ListCampaigns(repository.CampaignListFilter{
		StoreID:  uint(storeID),
		Type:     strings.TrimSpace(c.Query("type")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, campaigns, response.BuildPagination(page, pageSize, total))
}

// DeleteCampaign 删除店铺活动
func (h *Handler) DeleteCampaign(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	campaignID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || campaignID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.DiscountService.DeleteCampaign(uint(campaignID), uid); err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, nil)
}

func parseMoneyField(raw string) (models.Money, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return models.MoneyZero(), err
	}
	return models.NewMoneyFromDecimal(value), nil
}

func parseOptionalMoneyField(raw string) (models.Money, error) {
	if strings.TrimSpace(raw) == "" {
		return models.MoneyZero(), nil
	}
	return parseMoneyField(raw)
}
