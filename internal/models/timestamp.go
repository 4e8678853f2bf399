package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp принимает как RFC3339, так и LocalDateTime без зоны,
// который присылают сервисы API ("2024-05-01T10:15:30.123").
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		// Иногда приходит epoch в миллисекундах.
		var millis int64
		if numErr := json.Unmarshal(data, &millis); numErr != nil {
			return fmt.Errorf("models: некорректная дата %s", string(data))
		}
		t.Time = time.UnixMilli(millis).UTC()
		return nil
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("models: некорректная дата %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
