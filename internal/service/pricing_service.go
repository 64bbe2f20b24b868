package service

import (
	"time"

	"github.com/bazar-next/internal/constants"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	decimalHundred = decimal.NewFromInt(100)
	decimalOne     = decimal.NewFromInt(1)
)

// PriceInfo 商品最终展示价格信息
type PriceInfo struct {
	ListingID          uint         `json:"listing_id"`
	Currency           string       `json:"currency"`
	OriginalPrice      models.Money `json:"original_price"`
	DiscountedPrice    models.Money `json:"discounted_price"`
	DiscountPercentage models.Money `json:"discount_percentage"`
	DisplayPercentage  int          `json:"display_percentage"`
	DiscountType       string       `json:"discount_type"`
	DiscountValue      models.Money `json:"discount_value"`
	AbsoluteSavings    models.Money `json:"absolute_savings"`
	Source             string       `json:"source"`
	SourceID           uint         `json:"source_id,omitempty"`
	SourceTitle        string       `json:"source_title,omitempty"`
	Deadline           *time.Time   `json:"deadline,omitempty"`
}

// HasDiscount 判断是否存在生效折扣
func (p PriceInfo) HasDiscount() bool {
	return p.Source != constants.PriceSourceNone
}

// PricingService 价格计算服务
type PricingService struct {
	listingRepo  repository.ListingRepository
	discountRepo repository.DiscountRepository
	campaignRepo repository.CampaignRepository
	storeRepo    repository.StoreRepository
}

// NewPricingService 创建价格计算服务
func NewPricingService(
	listingRepo repository.ListingRepository,
	discountRepo repository.DiscountRepository,
	campaignRepo repository.CampaignRepository,
	storeRepo repository.StoreRepository,
) *PricingService {
	return &PricingService{
		listingRepo:  listingRepo,
		discountRepo: discountRepo,
		campaignRepo: campaignRepo,
		storeRepo:    storeRepo,
	}
}

// ResolveForListing 加载商品与其店铺的生效折扣并计算最终价格。
// 店铺失效（deactivated/archived）后目录折扣与活动不再参与计算。
func (s *PricingService) ResolveForListing(listingID uint, now time.Time) (*PriceInfo, error) {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	var discounts []models.Discount
	var campaigns []models.Campaign
	if listing.StoreID != nil && *listing.StoreID != 0 {
		store, err := s.storeRepo.GetByID(*listing.StoreID)
		if err != nil {
			return nil, err
		}
		if StoreVisible(store, now) {
			discounts, err = s.discountRepo.ListActiveForStore(*listing.StoreID, now)
			if err != nil {
				return nil, err
			}
			campaigns, err = s.campaignRepo.ListActiveForStore(*listing.StoreID, now)
			if err != nil {
				return nil, err
			}
		}
	}

	info := ResolvePrice(listing, discounts, campaigns, now)
	return &info, nil
}

// ResolvePrice 计算商品最终价格，纯函数。
// 优先级：店铺折扣/活动命中则生效（按目录顺序取第一个），否则回退商品自带折扣字段，
// 多个来源不叠加。
func ResolvePrice(listing *models.Listing, discounts []models.Discount, campaigns []models.Campaign, now time.Time) PriceInfo {
	info := PriceInfo{
		ListingID:       listing.ID,
		Currency:        listing.Currency,
		OriginalPrice:   listing.Price,
		DiscountedPrice: listing.Price,
		Source:          constants.PriceSourceNone,
	}

	for i := range discounts {
		d := &discounts[i]
		if !discountApplies(d, listing, now) {
			continue
		}
		applyCatalogDiscount(&info, listing, d.Type, d.Value, d.MaxDiscountAmount)
		info.Source = constants.PriceSourceDiscount
		info.SourceID = d.ID
		info.SourceTitle = d.Title
		info.Deadline = ResolveDeadline(listing, discounts, campaigns, now)
		return info
	}

	for i := range campaigns {
		c := &campaigns[i]
		if !campaignApplies(c, listing, now) {
			continue
		}
		// 活动数值统一按百分比折扣参与价格计算
		applyCatalogDiscount(&info, listing, constants.DiscountTypePercentage, c.Value, c.MaxDiscountAmount)
		info.Source = constants.PriceSourceCampaign
		info.SourceID = c.ID
		info.SourceTitle = c.Title
		info.DiscountType = c.Type
		info.Deadline = ResolveDeadline(listing, discounts, campaigns, now)
		return info
	}

	applyListingDiscount(&info, listing)
	info.Deadline = ResolveDeadline(listing, discounts, campaigns, now)
	return info
}

// ResolveDeadline 计算倒计时截止时间：所有候选截止时间中最近的未来时刻。
// 候选集与价格来源的胜出者无关，一个商品可能展示固定金额折扣价、
// 却倒计时到更早结束的活动。
func ResolveDeadline(listing *models.Listing, discounts []models.Discount, campaigns []models.Campaign, now time.Time) *time.Time {
	var deadline *time.Time
	consider := func(t *time.Time) {
		if t == nil || t.IsZero() || !t.After(now) {
			return
		}
		if deadline == nil || t.Before(*deadline) {
			candidate := *t
			deadline = &candidate
			return
		}
	}

	for i := range discounts {
		d := &discounts[i]
		if discountApplies(d, listing, now) {
			consider(&d.EndsAt)
		}
	}
	for i := range campaigns {
		c := &campaigns[i]
		if campaignApplies(c, listing, now) {
			consider(&c.EndsAt)
		}
	}
	if listing.HasDiscount {
		consider(listing.DiscountEndsAt)
	}
	consider(listing.PromotionEndsAt)
	return deadline
}

func discountApplies(d *models.Discount, listing *models.Listing, now time.Time) bool {
	if !d.ActiveAt(now) {
		return false
	}
	if !d.ApplicableListings.Contains(listing.ID) {
		return false
	}
	if d.MinPurchaseAmount.IsPositive() && listing.Price.LessThan(d.MinPurchaseAmount.Decimal) {
		return false
	}
	return true
}

func campaignApplies(c *models.Campaign, listing *models.Listing, now time.Time) bool {
	if !c.ActiveAt(now) {
		return false
	}
	return c.ApplicableListings.Contains(listing.ID)
}

// applyCatalogDiscount 应用店铺折扣/活动的价格计算与封顶规则
func applyCatalogDiscount(info *PriceInfo, listing *models.Listing, discountType string, value, maxDiscount models.Money) {
	base := listing.Price.Decimal
	info.OriginalPrice = models.NewMoneyFromDecimal(base)
	info.DiscountType = discountType
	info.DiscountValue = value

	switch discountType {
	case constants.DiscountTypePercentage:
		savings := base.Mul(value.Decimal).Div(decimalHundred)
		if maxDiscount.IsPositive() && savings.GreaterThan(maxDiscount.Decimal) {
			savings = maxDiscount.Decimal
		}
		if savings.GreaterThan(base) {
			savings = base
		}
		finishDiscount(info, base, savings)
	case constants.DiscountTypeFixedAmount:
		savings := value.Decimal
		if savings.GreaterThan(base) {
			savings = base
		}
		if savings.IsNegative() {
			savings = decimal.Zero
		}
		finishDiscount(info, base, savings)
	default:
		// buy_x_get_y 只影响角标展示，不改变单价
		finishDiscount(info, base, decimal.Zero)
	}
}

// applyListingDiscount 商品自带折扣的重建启发式：
// 百分比字段 >= 1 按百分比折扣处理，否则原价高于现价按固定金额折扣反推，
// 0 到 1 之间的历史百分比视为曾被百分比编码过的固定金额折扣，以价差为准。
func applyListingDiscount(info *PriceInfo, listing *models.Listing) {
	if !listing.HasDiscount {
		return
	}
	price := listing.Price.Decimal

	if listing.DiscountPercentage != nil && listing.DiscountPercentage.GreaterThanOrEqual(decimalOne) {
		pct := listing.DiscountPercentage.Decimal
		factor := decimalOne.Sub(pct.Div(decimalHundred))
		var base decimal.Decimal
		var discounted decimal.Decimal
		if listing.OriginalPrice != nil && listing.OriginalPrice.IsPositive() {
			base = listing.OriginalPrice.Decimal
			discounted = base.Mul(factor)
		} else {
			// 现价已是折后价，反推原价
			if factor.IsZero() || factor.IsNegative() {
				return
			}
			base = price.Div(factor)
			discounted = price
		}
		info.Source = constants.PriceSourceListing
		info.DiscountType = constants.DiscountTypePercentage
		info.DiscountValue = models.NewMoneyFromDecimal(pct)
		info.OriginalPrice = models.NewMoneyFromDecimal(base)
		finishDiscount(info, base, base.Sub(discounted))
		return
	}

	if listing.OriginalPrice != nil && listing.OriginalPrice.GreaterThan(price) {
		base := listing.OriginalPrice.Decimal
		savings := base.Sub(price)
		info.Source = constants.PriceSourceListing
		info.DiscountType = constants.DiscountTypeFixedAmount
		info.DiscountValue = models.NewMoneyFromDecimal(savings.Round(0))
		info.OriginalPrice = models.NewMoneyFromDecimal(base)
		finishDiscount(info, base, savings)
		return
	}
}

// finishDiscount 收尾：折后价、节省金额、百分比与展示取整
func finishDiscount(info *PriceInfo, base, savings decimal.Decimal) {
	if savings.IsNegative() {
		savings = decimal.Zero
	}
	if savings.GreaterThan(base) {
		savings = base
	}
	discounted := base.Sub(savings)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}
	info.DiscountedPrice = models.NewMoneyFromDecimal(discounted)
	info.AbsoluteSavings = models.NewMoneyFromDecimal(savings)
	if base.IsPositive() {
		pct := savings.Div(base).Mul(decimalHundred)
		info.DiscountPercentage = models.NewMoneyFromDecimal(pct)
		info.DisplayPercentage = int(pct.Round(0).IntPart())
	}
}
