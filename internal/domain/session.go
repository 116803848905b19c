package domain

import "time"

// Session represents a conversation session.
type Session struct {
	SessionID     string        `json:"session_id"`
	ClientID      string        `json:"client_id,omitempty"`
	Title         string        `json:"title"`
	ActiveVersion int           `json:"active_version,omitempty"` // 0 = no preview yet
	PendingRetry  *PendingRetry `json:"pending_retry,omitempty"`
	Archived      bool          `json:"archived"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// PendingRetry holds a parked turn awaiting creation of a missing client.
// A session carries at most one; a later park overwrites it.
type PendingRetry struct {
	Text        string   `json:"text"`
	Attachments []string `json:"attachments,omitempty"`
}

// Message represents a single message in a session. Messages are append-only;
// their order within a session is significant and immutable.
type Message struct {
	MessageID string    `json:"message_id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	ImageURLs []string  `json:"image_urls,omitempty"`
	// PreviewVersion is set only on assistant messages that produced a draft.
	PreviewVersion int       `json:"preview_version,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// SessionInfo is the list-view summary of a session.
type SessionInfo struct {
	SessionID    string    `json:"session_id"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientName   string    `json:"client_name,omitempty"`
	Title        string    `json:"title"`
	LastMessage  string    `json:"last_message,omitempty"`
	MessageCount int       `json:"message_count"`
	Archived     bool      `json:"archived"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionDetail is a session with its full message and preview history.
type SessionDetail struct {
	Session   Session      `json:"session"`
	State     SessionState `json:"state"`
	Messages  []Message    `json:"messages"`
	Previews  []Preview    `json:"previews"`
	ClientRef *Client      `json:"client,omitempty"`
}

// ProjectState derives the drafting state of a session. It is a pure
// projection: the session row, ledger length and committed flag are the only
// inputs.
func ProjectState(s *Session, previewCount int, committed bool) SessionState {
	switch {
	case s.PendingRetry != nil:
		return SessionStateClientPending
	case committed:
		return SessionStateCommitted
	case s.ActiveVersion > 0:
		return SessionStatePreviewReady
	case previewCount > 0:
		return SessionStateDrafting
	default:
		return SessionStateEmpty
	}
}
