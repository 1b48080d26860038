package minio

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/tea-corner/go-backend/internal/cfg"
	"github.com/tea-corner/go-backend/internal/usecase"
	"github.com/tea-corner/go-backend/pkg/e"
)

// PhotoRepo реализует репозиторий фотографий товаров поверх MinIO.
type PhotoRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewPhotoRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *PhotoRepo {
	return &PhotoRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает фото в MinIO и возвращает ключ объекта.
// Ключ формируется из UUID и расширения исходного файла,
// чтобы два фото с одинаковым именем не перетирали друг друга.
func (p *PhotoRepo) Upload(ctx context.Context, photo *usecase.ProductPhoto) (string, error) {
	key := buildObjectKey(photo.Name)
	reader := bytes.NewReader(photo.Data)

	info, err := p.mc.PutObject(ctx, p.cfg.BucketName, key, reader, photo.Size, minio.PutObjectOptions{
		ContentType: photo.MimeType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Delete удаляет объект из MinIO по указанному ключу.
func (p *PhotoRepo) Delete(ctx context.Context, key string) error {
	if err := p.mc.RemoveObject(ctx, p.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// PublicURL возвращает внешнюю ссылку на объект.
func (p *PhotoRepo) PublicURL(key string) string {
	base := strings.TrimRight(p.cfg.PublicBaseURL, "/")
	return fmt.Sprintf("%s/%s/%s", base, p.cfg.BucketName, key)
}

func buildObjectKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("products/%s%s", uuid.NewString(), ext)
}
