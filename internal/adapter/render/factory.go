package render

import (
	"log"
	"os"
	"time"

	"invoicechat/backend/internal/adapter/extract"
)

// NewRenderer creates a renderer based on the INVOICECHAT_MODE environment
// variable. If INVOICECHAT_MODE=MOCK, returns a MockRenderer; otherwise
// returns a real Client.
func NewRenderer(baseURL string, timeout time.Duration) Renderer {
	mode := os.Getenv(extract.EnvMode)

	if mode == extract.ModeMock {
		log.Println("INVOICECHAT_MODE=MOCK detected, using mock renderer")
		return NewMockRenderer()
	}

	return NewClient(baseURL, timeout)
}
