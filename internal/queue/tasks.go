package queue

import (
	"encoding/json"

	"github.com/bazar-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskStoreNotify 店铺事件粉丝通知任务
	TaskStoreNotify = constants.TaskStoreNotify
	// TaskStoreExpiryRemind 店铺到期提醒任务
	TaskStoreExpiryRemind = constants.TaskStoreExpiryRemind
)

// StoreNotifyPayload 店铺事件通知任务载荷
type StoreNotifyPayload struct {
	StoreID uint   `json:"store_id"`
	Event   string `json:"event"`
}

// StoreExpiryRemindPayload 店铺到期提醒任务载荷
type StoreExpiryRemindPayload struct {
	StoreID uint `json:"store_id"`
}

// NewStoreNotifyTask 创建店铺事件通知任务
func NewStoreNotifyTask(payload StoreNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStoreNotify, body), nil
}

// NewStoreExpiryRemindTask 创建店铺到期提醒任务
func NewStoreExpiryRemindTask(payload StoreExpiryRemindPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStoreExpiryRemind, body), nil
}
