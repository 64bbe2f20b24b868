package public

import (
	"errors"

	handlershared "github.com/bazar-next/internal/http/handlers/shared"
	"github.com/bazar-next/internal/http/response"
	"github.com/bazar-next/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithData(c *gin.Context, code int, key string, data interface{}, err error) {
	handlershared.RespondErrorWithData(c, code, key, data, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var storeCommonErrorRules = []mappedHandlerError{
	{target: service.ErrValidation, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrNotOwner, code: response.CodeForbidden, key: "error.not_owner"},
	{target: service.ErrStoreNotFound, code: response.CodeNotFound, key: "error.store_not_found"},
	{target: service.ErrStorePlanNotFound, code: response.CodeNotFound, key: "error.store_plan_not_found"},
	{target: service.ErrStoreArchived, code: response.CodeBadRequest, key: "error.store_archived"},
	{target: service.ErrStoreNotActive, code: response.CodeBadRequest, key: "error.store_not_active"},
	{target: service.ErrStoreAlreadyActive, code: response.CodeBadRequest, key: "error.store_already_active"},
	{target: service.ErrStoreQuotaExceeded, code: response.CodeBadRequest, key: "error.store_quota_exceeded"},
	{target: service.ErrStoreLimitReached, code: response.CodeBadRequest, key: "error.store_limit_reached"},
	{target: service.ErrListingNotFound, code: response.CodeNotFound, key: "error.listing_not_found"},
}

var discountCommonErrorRules = []mappedHandlerError{
	{target: service.ErrValidation, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrNotOwner, code: response.CodeForbidden, key: "error.not_owner"},
	{target: service.ErrStoreNotFound, code: response.CodeNotFound, key: "error.store_not_found"},
	{target: service.ErrDiscountNotFound, code: response.CodeNotFound, key: "error.discount_not_found"},
	{target: service.ErrCampaignNotFound, code: response.CodeNotFound, key: "error.campaign_not_found"},
	{target: service.ErrListingNotFound, code: response.CodeNotFound, key: "error.listing_not_found"},
}

var walletCommonErrorRules = []mappedHandlerError{
	{target: service.ErrWalletInvalidAmount, code: response.CodeBadRequest, key: "error.wallet_amount_invalid"},
	{target: service.ErrWalletAccountNotFound, code: response.CodeNotFound, key: "error.not_found"},
	{target: service.ErrRechargeOrderNotFound, code: response.CodeNotFound, key: "error.recharge_not_found"},
	{target: service.ErrRechargeOrderClosed, code: response.CodeBadRequest, key: "error.recharge_closed"},
	{target: service.ErrPaymentGatewayDisabled, code: response.CodeBadRequest, key: "error.gateway_disabled"},
}

var purchaseExtraErrorRules = []mappedHandlerError{
	{target: service.ErrPurchaseNotConfirmed, code: response.CodeBadRequest, key: "error.purchase_not_confirmed"},
	{target: service.ErrPurchaseInFlight, code: response.CodeTooManyRequests, key: "error.purchase_in_flight"},
	{target: service.ErrPurchaseKindInvalid, code: response.CodeBadRequest, key: "error.purchase_kind_invalid"},
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var purchaseErrorRules = concatMappedHandlerErrors(
	purchaseExtraErrorRules,
	storeCommonErrorRules,
	discountCommonErrorRules,
	walletCommonErrorRules,
)

// respondStoreError 店铺操作错误响应，删除受阻时携带剩余商品数
func respondStoreError(c *gin.Context, err error) {
	var activeListings *service.StoreActiveListingsError
	if errors.As(err, &activeListings) {
		respondErrorWithData(c, response.CodeBadRequest, "error.store_has_listings", gin.H{
			"store_id":       activeListings.StoreID,
			"listings_count": activeListings.Count,
		}, nil)
		return
	}
	respondWithMappedError(c, err, storeCommonErrorRules, response.CodeInternal, "error.internal")
}

// respondPurchaseError 付费动作错误响应，余额不足时携带差额
func respondPurchaseError(c *gin.Context, err error) {
	var insufficient *service.InsufficientFundsError
	if errors.As(err, &insufficient) {
		respondErrorWithData(c, response.CodeBadRequest, "error.wallet_insufficient_balance", gin.H{
			"required":  insufficient.Required,
			"balance":   insufficient.Balance,
			"shortfall": insufficient.Shortfall,
		}, nil)
		return
	}
	respondWithMappedError(c, err, purchaseErrorRules, response.CodeInternal, "error.internal")
}

func respondDiscountError(c *gin.Context, err error) {
	respondWithMappedError(c, err, discountCommonErrorRules, response.CodeInternal, "error.internal")
}

func respondWalletError(c *gin.Context, err error) {
	respondWithMappedError(c, err, walletCommonErrorRules, response.CodeInternal, "error.internal")
}
