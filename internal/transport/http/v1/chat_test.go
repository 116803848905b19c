package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"invoicechat/backend/internal/adapter/extract"
	"invoicechat/backend/internal/adapter/imagestore"
	"invoicechat/backend/internal/adapter/render"
	"invoicechat/backend/internal/config"
	"invoicechat/backend/internal/domain"
	"invoicechat/backend/internal/service"
	"invoicechat/backend/policy"
	"invoicechat/backend/tests/helpers"
)

func newTestHandler(t *testing.T) (*Handler, *service.Service) {
	t.Helper()

	st := helpers.NewTestSQLiteStore(t)
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}
	svc := service.New(st, extract.NewMockClient(), render.NewMockRenderer(),
		imagestore.NewMemoryStore(), &config.Config{HistoryWindow: 20}, engine)
	return NewHandler(svc), svc
}

func seedClient(t *testing.T, svc *service.Service, name string, rate float64) *domain.Client {
	t.Helper()
	client, err := svc.CreateClient(context.Background(), service.CreateClientParams{
		Name:        name,
		DefaultRate: rate,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func postJSON(e *echo.Echo, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestChatProducesPreview(t *testing.T) {
	e := echo.New()
	h, svc := newTestHandler(t)
	seedClient(t, svc, "Acme Corp", 50)

	c, rec := postJSON(e, "/v1/chat", `{"content":"Bill Acme Corp for 10 hours at $50"}`)
	if err := h.Chat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.TurnResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != domain.TurnStatusPreview {
		t.Fatalf("expected preview status, got %s", resp.Status)
	}
	if resp.Preview == nil || resp.Preview.Draft.TotalCents != 50000 {
		t.Fatalf("unexpected preview: %+v", resp.Preview)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a session id for a fresh turn")
	}
}

func TestChatUnknownClientReturnsSuggestion(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := postJSON(e, "/v1/chat", `{"content":"Bill Acme Corp for 10 hours at $50"}`)
	if err := h.Chat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp domain.TurnResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != domain.TurnStatusClientNotFound {
		t.Fatalf("expected client_not_found, got %s", resp.Status)
	}
	if resp.SuggestedClient == nil || resp.SuggestedClient.Name != "Acme Corp" {
		t.Fatalf("unexpected suggestion: %+v", resp.SuggestedClient)
	}
}

func TestChatEmptyTurnRejected(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := postJSON(e, "/v1/chat", `{"content":"  "}`)
	if err := h.Chat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestConfirmFlowOverHTTP(t *testing.T) {
	e := echo.New()
	h, svc := newTestHandler(t)
	seedClient(t, svc, "Acme Corp", 50)

	turn, err := svc.HandleTurn(context.Background(), domain.TurnRequest{
		Content: "Bill Acme Corp for 10 hours at $50",
	})
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	c, rec := postJSON(e, "/v1/chat/confirm", `{"session_id":"`+turn.SessionID+`"}`)
	if err := h.ConfirmInvoice(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.TurnResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != domain.TurnStatusInvoiceCreated {
		t.Fatalf("expected invoice_created, got %s", resp.Status)
	}
	if resp.Invoice == nil || resp.Invoice.TotalCents != 50000 {
		t.Fatalf("unexpected invoice: %+v", resp.Invoice)
	}

	// Replay returns the same invoice.
	c2, rec2 := postJSON(e, "/v1/chat/confirm", `{"session_id":"`+turn.SessionID+`"}`)
	if err := h.ConfirmInvoice(c2); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var replay domain.TurnResult
	if err := json.Unmarshal(rec2.Body.Bytes(), &replay); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if replay.Invoice.InvoiceID != resp.Invoice.InvoiceID {
		t.Fatalf("replay produced a different invoice: %s vs %s", replay.Invoice.InvoiceID, resp.Invoice.InvoiceID)
	}
}

func TestConfirmWithoutPreview(t *testing.T) {
	e := echo.New()
	h, svc := newTestHandler(t)

	session, err := svc.StartSession(context.Background(), "", "empty")
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	c, rec := postJSON(e, "/v1/chat/confirm", `{"session_id":"`+session.SessionID+`"}`)
	if err := h.ConfirmInvoice(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateClientAndRetryOverHTTP(t *testing.T) {
	e := echo.New()
	h, svc := newTestHandler(t)

	turn, err := svc.HandleTurn(context.Background(), domain.TurnRequest{
		Content: "Bill Acme Corp for 10 hours at $50",
	})
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	if turn.Status != domain.TurnStatusClientNotFound {
		t.Fatalf("expected client_not_found, got %s", turn.Status)
	}

	body := `{"session_id":"` + turn.SessionID + `","name":"Acme Corp","default_rate":50}`
	c, rec := postJSON(e, "/v1/chat/create-client", body)
	if err := h.CreateClientAndRetry(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.TurnResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != domain.TurnStatusPreview {
		t.Fatalf("expected preview after retry, got %s", resp.Status)
	}
}
