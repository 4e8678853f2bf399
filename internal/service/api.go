package service

import (
	"context"
	"net/url"
	"strconv"
)

// API описывает адаптер запросов, через который работают все клиенты ресурсов.
// Каждый вызов метода клиента ресурса порождает ровно один запрос.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
