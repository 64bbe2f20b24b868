package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IDList 存储为 JSON 数组文本的 ID 集合（适用商品范围等）
type IDList []uint

// Contains 判断是否包含指定 ID
func (l IDList) Contains(id uint) bool {
	for _, item := range l {
		if item == id {
			return true
		}
	}
	return false
}

// Value 用于数据库写入
func (l IDList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	payload, err := json.Marshal([]uint(l))
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan 用于数据库读取
func (l *IDList) Scan(value interface{}) error {
	if value == nil {
		*l = IDList{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported id list column type: %T", value)
	}
	if len(raw) == 0 {
		*l = IDList{}
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return err
	}
	*l = ids
	return nil
}
