package public

import (
	"strconv"
	"strings"
	"time"

	"github.com/bazar-next/internal/http/response"
	"github.com/bazar-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// StoreAttachListingRequest 商品挂入店铺请求
type StoreAttachListingRequest struct {
	ListingID uint `json:"listing_id" binding:"required"`
}

// GetStorePlans 查询可用店铺套餐
func (h *Handler) GetStorePlans(c *gin.Context) {
	plans, err := h.StoreService.ListPlans()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, plans)
}

// GetStores 分页查询店铺
func (h *Handler) GetStores(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	stores, total, err := h.StoreService.List(repository.StoreListFilter{
		UserID:   uint(userID),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, stores, response.BuildPagination(page, pageSize, total))
}

// GetStore 查询店铺详情，状态按到期时间即时推导
func (h *Handler) GetStore(c *gin.Context) {
	storeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || storeID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	info, err := h.StoreService.CheckStatus(uint(storeID), time.Now())
	if err != nil {
		respondStoreError(c, err)
		return
	}
	response.Success(c, info)
}

// GetMyStores 查询当前用户的店铺及状态
func (h *Handler) GetMyStores(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	stores, _, err := h.StoreService.List(repository.StoreListFilter{UserID: uid, PageSize: 100})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	now := time.Now()
	items := make([]interface{}, 0, len(stores))
	for i := range stores {
		info, infoErr := h.StoreService.CheckStatus(stores[i].ID, now)
		if infoErr != nil {
			continue
		}
		items = append(items, info)
	}
	response.Success(c, items)
}

// DeleteStore 删除店铺（要求店内无商品）
func (h *Handler) DeleteStore(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	storeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || storeID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.StoreService.Delete(uint(storeID), uid, time.Now()); err != nil {
		respondStoreError(c, err)
		return
	}
	response.Success(c, nil)
}

// AttachListingToStore 将商品挂入店铺
func (h *Handler) AttachListingToStore(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	storeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || storeID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req StoreAttachListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	listing, err := h.StoreService.AttachListing(uint(storeID), uid, req.ListingID, time.Now())
	if err != nil {
		respondStoreError(c, err)
		return
	}
	response.Success(c, listing)
}

// FollowStore 关注店铺
func (h *Handler) FollowStore(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	storeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || storeID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.StoreService.Follow(uint(storeID), uid); err != nil {
		respondStoreError(c, err)
		return
	}
	response.Success(c, nil)
}

// UnfollowStore 取消关注店铺
func (h *Handler) UnfollowStore(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	storeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || storeID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.StoreService.Unfollow(uint(storeID), uid); err != nil {
		respondStoreError(c, err)
		return
	}
	response.Success(c, nil)
}
