// Package render turns a committed preview into a billing document via an
// external document service.
package render

import (
	"context"

	"invoicechat/backend/internal/domain"
)

// Document is the durable artifact produced for a committed preview.
type Document struct {
	DocumentID  string `json:"document_id"`
	ArtifactURL string `json:"artifact_url"`
}

// Renderer produces a billing document from a preview. Implementations may
// block on external latency; a failed call leaves no document behind.
type Renderer interface {
	CreateDocument(ctx context.Context, preview *domain.Preview, client *domain.Client) (*Document, error)
}

// Ensure both implementations satisfy the interface.
var (
	_ Renderer = (*Client)(nil)
	_ Renderer = (*MockRenderer)(nil)
)
