package render

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"invoicechat/backend/internal/domain"
)

// MockRenderer is an in-process Renderer for tests and local development.
type MockRenderer struct{}

// NewMockRenderer creates a new mock renderer.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

// CreateDocument returns a synthetic document without calling any service.
func (m *MockRenderer) CreateDocument(_ context.Context, preview *domain.Preview, _ *domain.Client) (*Document, error) {
	id := uuid.New().String()
	return &Document{
		DocumentID:  id,
		ArtifactURL: fmt.Sprintf("mock://documents/%s/%s.pdf", id, preview.Draft.InvoiceNumber),
	}, nil
}
