package domain

// TurnRequest is one user turn submitted to the backend.
type TurnRequest struct {
	SessionID string   `json:"session_id,omitempty"` // empty starts a new session
	Content   string   `json:"content"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// TurnResult is the outcome of processing one turn.
type TurnResult struct {
	Status          TurnStatus       `json:"status"`
	SessionID       string           `json:"session_id"`
	Message         string           `json:"message"`
	Preview         *Preview         `json:"preview,omitempty"`
	ActiveVersion   int              `json:"active_version,omitempty"`
	SuggestedClient *SuggestedClient `json:"suggested_client,omitempty"`
	Invoice         *Invoice         `json:"invoice,omitempty"`
}

// MaxTurnAttachments is the per-turn image attachment limit.
const MaxTurnAttachments = 5
