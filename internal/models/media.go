package models

import "strings"

// Attachment файл, проверенный на клиенте и отправляемый в теле запроса.
type Attachment struct {
	Name string `json:"name"`
	MIME string `json:"mimeType"`
	Size int64  `json:"size"`
	Data string `json:"data"`
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
