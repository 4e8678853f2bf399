package models

import (
	"bytes"
	"encoding/json"
)

// Notification уведомление пользователя.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt Timestamp `json:"createdAt"`
}

// UnreadCount счётчик непрочитанных. API отдаёт голое число, объект {"count": n} тоже принимается.
type UnreadCount struct {
	Count int64 `json:"count"`
}

func (c *UnreadCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		type plain UnreadCount
		return json.Unmarshal(data, (*plain)(c))
	}
	if string(data) == "null" {
		c.Count = 0
		return nil
	}
	return json.Unmarshal(data, &c.Count)
}
