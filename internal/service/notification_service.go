package service

import (
	"fmt"

	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/queue"
	"github.com/bazar-next/internal/repository"

	"github.com/hibiken/asynq"
)

const notificationMaxRetry = 5

// NotificationService 店铺事件通知服务。投递为尽力而为：
// 入队失败只记日志，不阻塞也不回滚触发它的业务操作。
type NotificationService struct {
	storeRepo   repository.StoreRepository
	queueClient *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(storeRepo repository.StoreRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{
		storeRepo:   storeRepo,
		queueClient: queueClient,
	}
}

// NotifyStoreEvent 异步通知店铺关注者，失败重试由队列负责
func (s *NotificationService) NotifyStoreEvent(storeID uint, event string) {
	if s == nil || s.queueClient == nil {
		return
	}
	err := s.queueClient.EnqueueStoreNotify(queue.StoreNotifyPayload{
		StoreID: storeID,
		Event:   event,
	}, asynq.MaxRetry(notificationMaxRetry))
	if err != nil {
		logger.Warnw("store_notify_enqueue_failed", "store_id", storeID, "event", event, "error", err)
	}
}

// NotifyStoreExpiring 异步发送到期提醒
func (s *NotificationService) NotifyStoreExpiring(storeID uint) {
	if s == nil || s.queueClient == nil {
		return
	}
	err := s.queueClient.EnqueueStoreExpiryRemind(queue.StoreExpiryRemindPayload{
		StoreID: storeID,
	}, asynq.MaxRetry(notificationMaxRetry))
	if err != nil {
		logger.Warnw("store_expiry_remind_enqueue_failed", "store_id", storeID, "error", err)
	}
}

// DispatchStoreEvent 消费端：向店铺全部关注者派发事件
func (s *NotificationService) DispatchStoreEvent(storeID uint, event string) error {
	store, err := s.storeRepo.GetByIDUnscoped(storeID)
	if err != nil {
		return err
	}
	if store == nil {
		logger.Debugw("store_notify_skip_store_missing", "store_id", storeID)
		return nil
	}
	followers, err := s.storeRepo.ListFollowers(storeID)
	if err != nil {
		return err
	}
	for _, follower := range followers {
		s.deliver(follower, store, event)
	}
	logger.Infow("store_notify_dispatched",
		"store_id", storeID,
		"event", event,
		"followers", len(followers),
	)
	return nil
}

// DispatchExpiryReminder 消费端：向店主发送到期提醒
func (s *NotificationService) DispatchExpiryReminder(storeID uint) error {
	store, err := s.storeRepo.GetByID(storeID)
	if err != nil {
		return err
	}
	if store == nil {
		logger.Debugw("store_expiry_remind_skip_store_missing", "store_id", storeID)
		return nil
	}
	logger.Infow("store_expiry_reminder_sent",
		"store_id", store.ID,
		"user_id", store.UserID,
		"expires_at", store.ExpiresAt,
	)
	return nil
}

// deliver 单个关注者的投递出口。推送通道为外部协作方，这里只落结构化日志。
func (s *NotificationService) deliver(follower models.StoreFollower, store *models.Store, event string) {
	message := fmt.Sprintf("store %s: %s", store.Name, event)
	logger.Infow("store_follower_notified",
		"store_id", store.ID,
		"user_id", follower.UserID,
		"event", event,
		"message", message,
	)
}
