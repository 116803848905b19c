package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"invoicechat/backend/internal/domain"
)

// Client calls an OpenAI-compatible chat completion endpoint and parses the
// model's strict-JSON reply into a Result.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a new extraction client.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type chatCompletionRequest struct {
	Model          string                 `json:"model"`
	Messages       []chatMessage          `json:"messages"`
	Temperature    float64                `json:"temperature"`
	MaxTokens      int                    `json:"max_tokens"`
	ResponseFormat map[string]interface{} `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// extractionReply is the JSON envelope the prompt instructs the model to emit.
type extractionReply struct {
	Status      string     `json:"status"` // ready | clarification_needed
	Question    string     `json:"question,omitempty"`
	InvoiceData *DraftData `json:"invoice_data,omitempty"`
}

// Extract sends the turn to the model and interprets its reply. A transport
// or malformed-reply error is surfaced as KindFailure so the session stays
// usable; the caller decides whether to resubmit.
func (c *Client) Extract(ctx context.Context, turn TurnContext, attachments []string) (*Result, error) {
	messages := []chatMessage{{Role: "system", Content: c.systemPrompt(turn)}}
	for _, h := range turn.History {
		messages = append(messages, chatMessage{Role: string(h.Role), Content: h.Content})
	}
	messages = append(messages, userMessage(turn.Text, attachments))

	body, err := json.Marshal(&chatCompletionRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    0.2,
		MaxTokens:      2000,
		ResponseFormat: map[string]interface{}{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &Result{Kind: KindFailure, Reason: fmt.Sprintf("extraction request failed: %v", err)}, nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Result{Kind: KindFailure, Reason: fmt.Sprintf("failed to read response: %v", err)}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return &Result{Kind: KindFailure, Reason: fmt.Sprintf("extraction service returned %d", resp.StatusCode)}, nil
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return &Result{Kind: KindFailure, Reason: "malformed completion response"}, nil
	}
	if completion.Error != nil {
		return &Result{Kind: KindFailure, Reason: completion.Error.Message}, nil
	}
	if len(completion.Choices) == 0 {
		return &Result{Kind: KindFailure, Reason: "empty completion"}, nil
	}

	return parseReply(completion.Choices[0].Message.Content), nil
}

func userMessage(text string, attachments []string) chatMessage {
	if len(attachments) == 0 {
		return chatMessage{Role: "user", Content: text}
	}
	parts := make([]contentPart, 0, len(attachments)+1)
	for _, url := range attachments {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageRef{URL: url}})
	}
	parts = append(parts, contentPart{Type: "text", Text: text})
	return chatMessage{Role: "user", Content: parts}
}

func parseReply(content string) *Result {
	// Models occasionally wrap JSON in a code fence despite instructions.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var reply extractionReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &reply); err != nil {
		return &Result{Kind: KindFailure, Reason: "extraction reply was not valid JSON"}
	}

	switch reply.Status {
	case "clarification_needed":
		question := reply.Question
		if question == "" {
			question = "Could you provide more details?"
		}
		return &Result{Kind: KindClarification, Question: question}
	case "ready":
		if reply.InvoiceData == nil {
			return &Result{Kind: KindFailure, Reason: "extraction reply missing invoice data"}
		}
		return &Result{Kind: KindDraft, Draft: reply.InvoiceData}
	default:
		return &Result{Kind: KindFailure, Reason: fmt.Sprintf("unknown extraction status %q", reply.Status)}
	}
}

func (c *Client) systemPrompt(turn TurnContext) string {
	var b strings.Builder
	b.WriteString("You are an invoice extraction assistant. Read the user's request and ")
	b.WriteString("reply with a single JSON object and nothing else.\n\n")
	b.WriteString("Reply {\"status\":\"ready\",\"invoice_data\":{...}} when you can produce a draft, ")
	b.WriteString("or {\"status\":\"clarification_needed\",\"question\":\"...\"} when required details are missing.\n")
	b.WriteString("invoice_data fields: client_name, invoice_type (hourly|tuition|project), date, ")
	b.WriteString("service_period_start, service_period_end, hours_entries [{date, hours, rate, description}], ")
	b.WriteString("line_items [{description, quantity, rate}], notes. Rates are dollars.\n")

	if turn.ClientContext != "" {
		b.WriteString("\nKnown client:\n")
		b.WriteString(turn.ClientContext)
		b.WriteString("\n")
	}
	if turn.CurrentDraft != nil {
		b.WriteString("\nThe user is editing this draft; treat revisions as modifications to it:\n")
		draft, _ := json.Marshal(turn.CurrentDraft)
		b.Write(draft)
		b.WriteString("\n")
	}
	if len(turn.SessionInvoices) > 0 {
		b.WriteString("\nInvoices already created in this conversation:\n")
		for _, inv := range turn.SessionInvoices {
			fmt.Fprintf(&b, "- %s %s (%s)\n", inv.InvoiceNumber, domain.FormatUSD(inv.TotalCents), inv.Status)
		}
	}
	return b.String()
}
