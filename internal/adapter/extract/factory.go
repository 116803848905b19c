package extract

import (
	"log"
	"os"
	"time"
)

const (
	// EnvMode is the environment variable name for mode selection.
	EnvMode = "INVOICECHAT_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewExtractor creates an extraction client based on the INVOICECHAT_MODE
// environment variable. If INVOICECHAT_MODE=MOCK, returns a MockClient;
// otherwise returns a real Client.
func NewExtractor(baseURL, apiKey, model string, timeout time.Duration) Extractor {
	mode := os.Getenv(EnvMode)

	if mode == ModeMock {
		log.Println("INVOICECHAT_MODE=MOCK detected, using mock extraction client")
		return NewMockClient()
	}

	return NewClient(baseURL, apiKey, model, timeout)
}
