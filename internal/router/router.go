package router

import (
	"fmt"
	"strings"

	"github.com/bazar-next/internal/cache"
	"github.com/bazar-next/internal/config"
	publichandlers "github.com/bazar-next/internal/http/handlers/public"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "bz"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	purchaseRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:purchase", redisPrefix),
		WindowSeconds: cfg.Security.PurchaseRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PurchaseRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/listings", publicHandler.GetListings)
			public.GET("/listings/:id", publicHandler.GetListing)
			public.GET("/listings/:id/price", publicHandler.GetListingPrice)
			public.GET("/stores", publicHandler.GetStores)
			public.GET("/stores/:id", publicHandler.GetStore)
			public.GET("/store-plans", publicHandler.GetStorePlans)
			public.GET("/discounts", publicHandler.GetStoreDiscounts)
			public.GET("/campaigns", publicHandler.GetStoreCampaigns)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 支付网关回调
		apiV1.POST("/payments/callback/payriff", publicHandler.PayriffCallback)
		apiV1.GET("/payments/callback/payriff", publicHandler.PayriffCallback)

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)

			user.POST("/listings", publicHandler.CreateListing)
			user.DELETE("/listings/:id", publicHandler.DeleteListing)
			user.PUT("/listings/:id/timer-bar", publicHandler.SetListingTimerBar)

			user.GET("/me/stores", publicHandler.GetMyStores)
			user.DELETE("/stores/:id", publicHandler.DeleteStore)
			user.POST("/stores/:id/listings", publicHandler.AttachListingToStore)
			user.POST("/stores/:id/follow", publicHandler.FollowStore)
			user.DELETE("/stores/:id/follow", publicHandler.UnfollowStore)

			user.POST("/discounts", publicHandler.CreateDiscount)
			user.PUT("/discounts/:id", publicHandler.UpdateDiscount)
			user.DELETE("/discounts/:id", publicHandler.DeleteDiscount)
			user.POST("/campaigns", publicHandler.CreateCampaign)
			user.DELETE("/campaigns/:id", publicHandler.DeleteCampaign)

			user.GET("/wallet", publicHandler.GetMyWallet)
			user.GET("/wallet/transactions", publicHandler.GetMyWalletTransactions)
			user.POST("/wallet/recharge", publicHandler.RechargeWallet)
			user.GET("/wallet/recharges", publicHandler.GetMyWalletRecharges)
			user.POST("/wallet/recharges/:order_no/confirm", publicHandler.ConfirmMyWalletRecharge)

			user.POST("/purchases", RateLimitMiddleware(redisClient, purchaseRule, KeyByUser), publicHandler.CreatePurchase)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
