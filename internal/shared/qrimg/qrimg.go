package qrimg

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/redis/go-redis/v9"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	cacheKeyPrefix = "mes:qr:"
	cacheTTL       = 7 * 24 * time.Hour
	imageSize      = 256
)

// Renderer 把二维码token渲染成PNG图片（base64编码）。
// token一经签发不可变，所以渲染结果可以长期缓存。
type Renderer struct {
	rdb *redis.Client
}

// NewRenderer 创建渲染器，rdb 可以为 nil（不启用缓存）
func NewRenderer(rdb *redis.Client) *Renderer {
	return &Renderer{rdb: rdb}
}

// Render 渲染token并返回base64编码的PNG
func (r *Renderer) Render(ctx context.Context, token string) (string, error) {
	if r.rdb != nil {
		if cached, err := r.rdb.Get(ctx, cacheKeyPrefix+token).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	png, err := qrcode.Encode(token, qrcode.Medium, imageSize)
	if err != nil {
		return "", err
	}
	encoded := base64.StdEncoding.EncodeToString(png)

	if r.rdb != nil {
		// 缓存失败不影响业务
		r.rdb.Set(ctx, cacheKeyPrefix+token, encoded, cacheTTL)
	}

	return encoded, nil
}
