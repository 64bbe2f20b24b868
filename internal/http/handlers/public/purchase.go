package public

import (
	"strings"
	"time"

	"github.com/bazar-next/internal/http/response"
	"github.com/bazar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// PurchaseRequest 付费动作请求
type PurchaseRequest struct {
	Kind      string `json:"kind" binding:"required"`
	Confirmed bool   `json:"confirmed"`

	StoreID     uint   `json:"store_id"`
	PlanID      uint   `json:"plan_id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	ListingID          uint   `json:"listing_id"`
	DiscountPercentage string `json:"discount_percentage"`
	DiscountEndsAt     string `json:"discount_ends_at"`
	Days               int    `json:"days"`
}

// CreatePurchase 执行付费动作：开店、续费、复活、推广、折扣
func (h *Handler) CreatePurchase(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input := service.PurchaseInput{
		UserID:      uid,
		Kind:        strings.TrimSpace(req.Kind),
		Confirmed:   req.Confirmed,
		StoreID:     req.StoreID,
		PlanID:      req.PlanID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		ListingID:   req.ListingID,
		Days:        req.Days,
	}
	if strings.TrimSpace(req.DiscountPercentage) != "" {
		percentage, err := parseMoneyField(req.DiscountPercentage)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		input.DiscountPercentage = percentage
	}
	if strings.TrimSpace(req.DiscountEndsAt) != "" {
		endsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.DiscountEndsAt))
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		input.DiscountEndsAt = endsAt
	}

	result, err := h.PurchaseService.Purchase(c.Request.Context(), input)
	if err != nil {
		respondPurchaseError(c, err)
		return
	}
	response.Success(c, result)
}
