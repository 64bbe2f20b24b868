package provider

import (
	"github.com/bazar-next/internal/cache"
	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/payment/payriff"
	"github.com/bazar-next/internal/queue"
	"github.com/bazar-next/internal/repository"
	"github.com/bazar-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo      repository.UserRepository
	ListingRepo   repository.ListingRepository
	DiscountRepo  repository.DiscountRepository
	CampaignRepo  repository.CampaignRepository
	StoreRepo     repository.StoreRepository
	StorePlanRepo repository.StorePlanRepository
	WalletRepo    repository.WalletRepository

	// Services
	UserAuthService     *service.UserAuthService
	ListingService      *service.ListingService
	PricingService      *service.PricingService
	DiscountService     *service.DiscountService
	StoreService        *service.StoreService
	WalletService       *service.WalletService
	PurchaseService     *service.PurchaseService
	NotificationService *service.NotificationService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.ListingRepo = repository.NewListingRepository(db)
	c.DiscountRepo = repository.NewDiscountRepository(db)
	c.CampaignRepo = repository.NewCampaignRepository(db)
	c.StoreRepo = repository.NewStoreRepository(db)
	c.StorePlanRepo = repository.NewStorePlanRepository(db)
	c.WalletRepo = repository.NewWalletRepository(db)
}

func (c *Container) initServices() {
	var gateway *payriff.Client
	if c.Config.Payriff.Enabled {
		client, err := payriff.New(payriff.Config{
			BaseURL:     c.Config.Payriff.BaseURL,
			MerchantID:  c.Config.Payriff.MerchantID,
			SecretKey:   c.Config.Payriff.SecretKey,
			CallbackURL: c.Config.Payriff.CallbackURL,
			TimeoutMS:   c.Config.Payriff.TimeoutMS,
		})
		if err != nil {
			logger.Warnw("provider_init_payriff_failed", "error", err)
		} else {
			gateway = client
		}
	}

	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.NotificationService = service.NewNotificationService(c.StoreRepo, c.QueueClient)
	c.ListingService = service.NewListingService(c.ListingRepo, c.StoreRepo)
	c.PricingService = service.NewPricingService(c.ListingRepo, c.DiscountRepo, c.CampaignRepo, c.StoreRepo)
	c.DiscountService = service.NewDiscountService(c.DiscountRepo, c.CampaignRepo, c.ListingRepo, c.StoreRepo)
	c.StoreService = service.NewStoreService(c.StoreRepo, c.StorePlanRepo, c.ListingRepo, c.NotificationService, c.Config.Store.MaxPerUser)
	c.WalletService = service.NewWalletService(c.WalletRepo, gateway)
	c.PurchaseService = service.NewPurchaseService(c.WalletRepo, c.WalletService, c.StoreService, c.DiscountService, c.Config.Promotion)
}
