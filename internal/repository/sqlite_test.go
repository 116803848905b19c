package store

import (
	"context"
	"testing"
	"time"

	"invoicechat/backend/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testClient(name string) *domain.Client {
	now := time.Now()
	return &domain.Client{
		ClientID:         "cl_" + name,
		Name:             name,
		DefaultRateCents: 5000,
		TemplateType:     domain.TemplateHourly,
		InvoicePrefix:    "INV",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	now := time.Now()
	sess := &domain.Session{
		SessionID: "s1",
		Title:     "New Chat",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil || got.Title != "New Chat" || got.ActiveVersion != 0 {
		t.Fatalf("unexpected session: %+v", got)
	}

	got.Title = "Invoice: Acme"
	got.ActiveVersion = 2
	got.PendingRetry = &domain.PendingRetry{Text: "bill acme", Attachments: []string{"u1"}}
	if err := store.UpdateSession(ctx, got); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	got2, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got2.ActiveVersion != 2 || got2.PendingRetry == nil || got2.PendingRetry.Text != "bill acme" {
		t.Fatalf("update lost fields: %+v", got2)
	}
	if len(got2.PendingRetry.Attachments) != 1 || got2.PendingRetry.Attachments[0] != "u1" {
		t.Fatalf("pending retry attachments mismatch: %+v", got2.PendingRetry)
	}

	missing, err := store.GetSession(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing session, got %+v err=%v", missing, err)
	}
}

func TestMessagesPreserveOrderAndImages(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	now := time.Now()
	sess := &domain.Session{SessionID: "s1", Title: "New Chat", CreatedAt: now, UpdatedAt: now}
	if err := store.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	msgs := []*domain.Message{
		{MessageID: "m1", SessionID: "s1", Role: domain.RoleUser, Content: "hello", ImageURLs: []string{"a", "b"}, CreatedAt: now},
		{MessageID: "m2", SessionID: "s1", Role: domain.RoleAssistant, Content: "draft", PreviewVersion: 1, CreatedAt: now.Add(time.Second)},
	}
	for _, m := range msgs {
		if err := store.CreateMessage(ctx, m); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
	}

	got, err := store.GetMessages(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].MessageID != "m1" || len(got[0].ImageURLs) != 2 {
		t.Fatalf("first message mismatch: %+v", got[0])
	}
	if got[1].PreviewVersion != 1 {
		t.Fatalf("preview version lost: %+v", got[1])
	}
}

func TestPreviewRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	now := time.Now()
	sess := &domain.Session{SessionID: "s1", Title: "New Chat", CreatedAt: now, UpdatedAt: now}
	if err := store.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	p := &domain.Preview{
		SessionID: "s1",
		Version:   1,
		Draft: domain.Draft{
			ClientID:      "c1",
			ClientName:    "Acme",
			InvoiceNumber: "INV-2026-001",
			InvoiceType:   domain.TemplateHourly,
			Date:          "2026-08-30",
			HoursEntries: []domain.HoursEntry{
				{Date: "2026-08-30", Hours: 10, RateCents: 5000, AmountCents: 50000},
			},
			TotalCents: 50000,
		},
		MessageID: "m2",
		CreatedAt: now,
	}
	if err := store.CreatePreview(ctx, p); err != nil {
		t.Fatalf("CreatePreview failed: %v", err)
	}

	// Duplicate version must be rejected by the primary key.
	if err := store.CreatePreview(ctx, p); err == nil {
		t.Fatal("expected duplicate version insert to fail")
	}

	got, err := store.GetPreviews(ctx, "s1")
	if err != nil {
		t.Fatalf("GetPreviews failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 preview, got %d", len(got))
	}
	if got[0].Draft.TotalCents != 50000 || len(got[0].Draft.HoursEntries) != 1 {
		t.Fatalf("draft mismatch: %+v", got[0].Draft)
	}
}

func TestClientLookup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.CreateClient(ctx, testClient("Acme")); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	got, err := store.GetClientByName(ctx, "acme")
	if err != nil {
		t.Fatalf("GetClientByName failed: %v", err)
	}
	if got == nil || got.Name != "Acme" {
		t.Fatalf("case-insensitive lookup failed: %+v", got)
	}

	// Unique name constraint.
	if err := store.CreateClient(ctx, testClient("Acme")); err == nil {
		t.Fatal("expected duplicate client name to fail")
	}

	all, err := store.ListClients(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListClients: %v len=%d", err, len(all))
	}
}

func TestInvoiceSourceVersionLookup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	now := time.Now()
	if err := store.CreateClient(ctx, testClient("Acme")); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	sess := &domain.Session{SessionID: "s1", Title: "New Chat", CreatedAt: now, UpdatedAt: now}
	if err := store.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	inv := &domain.Invoice{
		InvoiceID:     "inv_1",
		SessionID:     "s1",
		SourceVersion: 1,
		ClientID:      "cl_Acme",
		InvoiceNumber: "INV-2026-001",
		Date:          "2026-08-30",
		TotalCents:    50000,
		Status:        domain.InvoiceStatusGenerated,
		ArtifactURL:   "http://render/inv_1.pdf",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := store.CreateInvoice(ctx, inv); err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}

	got, err := store.GetInvoiceBySourceVersion(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("GetInvoiceBySourceVersion failed: %v", err)
	}
	if got == nil || got.InvoiceID != "inv_1" {
		t.Fatalf("unexpected invoice: %+v", got)
	}

	none, err := store.GetInvoiceBySourceVersion(ctx, "s1", 2)
	if err != nil || none != nil {
		t.Fatalf("expected nil for uncommitted version, got %+v err=%v", none, err)
	}

	// A second commit of the same {session, version} must be rejected.
	dup := *inv
	dup.InvoiceID = "inv_2"
	dup.InvoiceNumber = "INV-2026-002"
	if err := store.CreateInvoice(ctx, &dup); err == nil {
		t.Fatal("expected unique(session_id, source_version) violation")
	}

	exists, err := store.InvoiceNumberExists(ctx, "INV-2026-001")
	if err != nil || !exists {
		t.Fatalf("InvoiceNumberExists: %v %v", exists, err)
	}

	byNum, err := store.GetInvoiceByNumber(ctx, "INV-2026-001")
	if err != nil || byNum == nil || byNum.InvoiceID != "inv_1" {
		t.Fatalf("GetInvoiceByNumber: %+v err=%v", byNum, err)
	}
	if missing, err := store.GetInvoiceByNumber(ctx, "INV-2026-999"); err != nil || missing != nil {
		t.Fatalf("expected nil for unknown number, got %+v err=%v", missing, err)
	}

	numbers, err := store.ListInvoiceNumbers(ctx, "cl_Acme", "INV-2026-%")
	if err != nil || len(numbers) != 1 {
		t.Fatalf("ListInvoiceNumbers: %v len=%d", err, len(numbers))
	}

	ok, err := store.UpdateInvoiceStatus(ctx, "inv_1", domain.InvoiceStatusSent)
	if err != nil || !ok {
		t.Fatalf("UpdateInvoiceStatus: %v %v", ok, err)
	}
}

func TestListSessionsFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	now := time.Now()
	if err := store.CreateClient(ctx, testClient("Acme")); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	s1 := &domain.Session{SessionID: "s1", ClientID: "cl_Acme", Title: "Invoice: Acme", CreatedAt: now, UpdatedAt: now}
	s2 := &domain.Session{SessionID: "s2", Title: "New Chat", Archived: true, CreatedAt: now, UpdatedAt: now.Add(time.Second)}
	for _, s := range []*domain.Session{s1, s2} {
		if err := store.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}
	msg := &domain.Message{MessageID: "m1", SessionID: "s1", Role: domain.RoleUser, Content: "bill acme for 10 hours", CreatedAt: now}
	if err := store.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	visible, err := store.ListSessions(ctx, "", false, 50)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(visible) != 1 || visible[0].SessionID != "s1" {
		t.Fatalf("archived session leaked: %+v", visible)
	}
	if visible[0].ClientName != "Acme" || visible[0].MessageCount != 1 || visible[0].LastMessage == "" {
		t.Fatalf("summary fields missing: %+v", visible[0])
	}

	all, err := store.ListSessions(ctx, "", true, 50)
	if err != nil || len(all) != 2 {
		t.Fatalf("include_archived: %v len=%d", err, len(all))
	}

	byClient, err := store.ListSessions(ctx, "cl_Acme", true, 50)
	if err != nil || len(byClient) != 1 {
		t.Fatalf("client filter: %v len=%d", err, len(byClient))
	}
}

func TestDeleteSessionCascades(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	now := time.Now()
	sess := &domain.Session{SessionID: "s1", Title: "New Chat", CreatedAt: now, UpdatedAt: now}
	if err := store.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	msg := &domain.Message{MessageID: "m1", SessionID: "s1", Role: domain.RoleUser, Content: "x", CreatedAt: now}
	if err := store.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	if err := store.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	msgs, err := store.GetMessages(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("messages survived delete: %d", len(msgs))
	}
}
