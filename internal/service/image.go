package service

import (
	"context"
	"fmt"
	"strings"

	"invoicechat/backend/internal/adapter/imagestore"
)

// UploadImage validates and stores one attachment image, returning the URL
// to reference from a turn.
func (s *Service) UploadImage(ctx context.Context, content []byte, contentType, filename string) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty upload")
	}
	if len(content) > imagestore.MaxUploadBytes {
		return "", fmt.Errorf("image exceeds %d byte limit", imagestore.MaxUploadBytes)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	return s.images.Upload(ctx, content, contentType, filename)
}
