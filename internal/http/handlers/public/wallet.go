package public

import (
	"strconv"
	"strings"

	"github.com/bazar-next/internal/http/response"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"
	"github.com/bazar-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WalletRechargeRequest 用户充值请求
type WalletRechargeRequest struct {
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency"`
	Remark   string `json:"remark"`
}

// GetMyWallet 获取当前用户钱包信息
func (h *Handler) GetMyWallet(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	account, err := h.WalletService.GetAccount(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, account)
}

// GetMyWalletTransactions 获取当前用户钱包流水
func (h *Handler) GetMyWalletTransactions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	transactions, total, err := h.WalletService.ListTransactions(repository.WalletTransactionListFilter{
		UserID:   uid,
		Type:     strings.TrimSpace(c.Query("type")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, transactions, response.BuildPagination(page, pageSize, total))
}

// RechargeWallet 发起在线充值
func (h *Handler) RechargeWallet(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req WalletRechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.WalletService.Recharge(c.Request.Context(), service.WalletRechargeInput{
		UserID:   uid,
		Amount:   models.NewMoneyFromDecimal(amount),
		Currency: strings.TrimSpace(req.Currency),
		Remark:   strings.TrimSpace(req.Remark),
	})
	if err != nil {
		respondWalletError(c, err)
		return
	}
	response.Success(c, order)
}

// GetMyWalletRecharges 获取当前用户充值订单列表
func (h *Handler) GetMyWalletRecharges(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	orders, total, err := h.WalletService.ListRechargeOrders(repository.WalletRechargeListFilter{
		UserID:   uid,
		Status:   strings.TrimSpace(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// ConfirmMyWalletRecharge 主动向网关确认充值状态
func (h *Handler) ConfirmMyWalletRecharge(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	existing, err := h.WalletRepo.GetRechargeOrderByOrderNo(orderNo)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	if existing == nil || existing.UserID != uid {
		respondError(c, response.CodeNotFound, "error.recharge_not_found", nil)
		return
	}
	order, err := h.WalletService.ConfirmRecharge(c.Request.Context(), orderNo)
	if err != nil {
		respondWalletError(c, err)
		return
	}
	account, err := h.WalletService.GetAccount(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"order":   order,
		"account": account,
	})
}

// PayriffCallback 支付网关回调。
// 回调内容不直接入账，统一回源网关查询后再决定订单状态。
func (h *Handler) PayriffCallback(c *gin.Context) {
	var payload struct {
		OrderNo string `json:"orderId"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	orderNo := strings.TrimSpace(payload.OrderNo)
	if orderNo == "" {
		orderNo = strings.TrimSpace(c.Query("order_no"))
	}
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.WalletService.ConfirmRecharge(c.Request.Context(), orderNo)
	if err != nil {
		respondWalletError(c, err)
		return
	}
	response.Success(c, gin.H{"order_no": order.OrderNo, "status": order.Status})
}
