package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/provider"
	"github.com/bazar-next/internal/queue"
	"github.com/bazar-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskStoreNotify, c.handleStoreNotify)
	mux.HandleFunc(queue.TaskStoreExpiryRemind, c.handleStoreExpiryRemind)
}

func (c *Consumer) handleStoreNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_store_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StoreNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_store_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.StoreID == 0 || payload.Event == "" {
		logger.Debugw("worker_store_notify_skip_invalid_payload", "store_id", payload.StoreID, "event", payload.Event)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_store_notify_skip_service_nil", "store_id", payload.StoreID)
		return nil
	}
	if err := c.NotificationService.DispatchStoreEvent(payload.StoreID, payload.Event); err != nil {
		logger.Warnw("worker_store_notify_failed", "store_id", payload.StoreID, "event", payload.Event, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleStoreExpiryRemind(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_store_expiry_remind_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StoreExpiryRemindPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_store_expiry_remind_unmarshal_failed", "error", err)
		return err
	}
	if payload.StoreID == 0 {
		logger.Debugw("worker_store_expiry_remind_skip_invalid_payload", "store_id", payload.StoreID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_store_expiry_remind_skip_service_nil", "store_id", payload.StoreID)
		return nil
	}
	err := c.NotificationService.DispatchExpiryReminder(payload.StoreID)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			logger.Debugw("worker_store_expiry_remind_skip_store_not_found", "store_id", payload.StoreID)
			return nil
		}
		logger.Warnw("worker_store_expiry_remind_failed", "store_id", payload.StoreID, "error", err)
		return err
	}
	return nil
}
