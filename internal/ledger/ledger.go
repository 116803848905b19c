// Package ledger implements the per-session append-only preview history.
package ledger

import (
	"time"

	"invoicechat/backend/internal/domain"
)

// Ledger is an ordered, append-only log of previews with stable version
// numbers. Version numbers start at 1 and are contiguous; entries are never
// mutated or removed. The active pointer selects which version a confirm
// would read.
type Ledger struct {
	sessionID string
	entries   []domain.Preview
	active    int // 0 = none
}

// New returns an empty ledger for the session.
func New(sessionID string) *Ledger {
	return &Ledger{sessionID: sessionID}
}

// Load rebuilds a ledger from persisted previews. Entries must already be
// ordered by version; active of 0 means no selection.
func Load(sessionID string, entries []domain.Preview, active int) *Ledger {
	l := &Ledger{sessionID: sessionID, entries: entries}
	if active > 0 && active <= len(entries) {
		l.active = active
	}
	return l
}

// Append records a new preview built from draft, assigns the next version
// and advances the active pointer to it.
func (l *Ledger) Append(draft domain.Draft, messageID string, now time.Time) domain.Preview {
	p := domain.Preview{
		SessionID: l.sessionID,
		Version:   len(l.entries) + 1,
		Draft:     draft,
		MessageID: messageID,
		CreatedAt: now,
	}
	l.entries = append(l.entries, p)
	l.active = p.Version
	return p
}

// Get returns the preview with the given version number.
func (l *Ledger) Get(version int) (domain.Preview, error) {
	if version < 1 || version > len(l.entries) {
		return domain.Preview{}, domain.ErrUnknownVersion
	}
	return l.entries[version-1], nil
}

// SetActive redirects the active pointer to an existing version.
func (l *Ledger) SetActive(version int) error {
	if version < 1 || version > len(l.entries) {
		return domain.ErrUnknownVersion
	}
	l.active = version
	return nil
}

// Restore re-records version's content as a new append and makes it active,
// so that restoring an old version is indistinguishable from an edit to
// downstream consumers.
func (l *Ledger) Restore(version int, messageID string, now time.Time) (domain.Preview, error) {
	src, err := l.Get(version)
	if err != nil {
		return domain.Preview{}, err
	}
	return l.Append(src.Draft, messageID, now), nil
}

// Active returns the preview the active pointer selects, or nil if none.
func (l *Ledger) Active() *domain.Preview {
	if l.active == 0 {
		return nil
	}
	p := l.entries[l.active-1]
	return &p
}

// ActiveVersion returns the active version number, 0 if none.
func (l *Ledger) ActiveVersion() int { return l.active }

// History returns the previews in version order.
func (l *Ledger) History() []domain.Preview {
	out := make([]domain.Preview, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded previews.
func (l *Ledger) Len() int { return len(l.entries) }
