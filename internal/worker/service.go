package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bazar-next/internal/cache"
	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.StoreRepo != nil {
		go s.runExpiryRemindLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runExpiryRemindLoop 周期扫描即将到期的店铺并推送提醒任务
func (s *Service) runExpiryRemindLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.Config == nil {
		return
	}
	storeCfg := s.consumer.Config.Store
	interval := time.Duration(storeCfg.RemindScanMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	remindWindow := time.Duration(storeCfg.ExpiryRemindDays) * 24 * time.Hour
	if remindWindow <= 0 {
		remindWindow = 3 * 24 * time.Hour
	}

	runOnce := func() {
		now := time.Now()
		stores, err := s.consumer.StoreRepo.ListExpiringBetween(now, now.Add(remindWindow))
		if err != nil {
			logger.Warnw("worker_expiry_scan_failed", "error", err)
			return
		}
		for _, store := range stores {
			// 每店每天只提醒一次
			dedupeKey := fmt.Sprintf("store:expiry_remind:%d:%s", store.ID, now.Format("2006-01-02"))
			acquired, err := cache.SetNX(context.Background(), dedupeKey, 1, 24*time.Hour)
			if err != nil {
				logger.Warnw("worker_expiry_dedupe_failed", "store_id", store.ID, "error", err)
				continue
			}
			if !acquired {
				continue
			}
			if err := s.consumer.QueueClient.EnqueueStoreExpiryRemind(queue.StoreExpiryRemindPayload{
				StoreID: store.ID,
			}); err != nil {
				logger.Warnw("worker_expiry_enqueue_failed", "store_id", store.ID, "error", err)
			}
		}
		if len(stores) > 0 {
			logger.Infow("worker_expiry_scan_done", "candidates", len(stores))
		}
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
