package email

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/fyrsmithlabs/interviewd/internal/config"
	"github.com/fyrsmithlabs/interviewd/internal/googleauth"
)

// InboundMessage is one received email, flattened to the fields the
// reply monitor routes on.
type InboundMessage struct {
	ID      string
	Subject string
	From    string
	Body    string
}

// Reader lists and fetches inbound mail.
type Reader interface {
	// Search returns the IDs of messages matching a Gmail query.
	Search(ctx context.Context, query string) ([]string, error)
	// Get fetches one message by ID.
	Get(ctx context.Context, id string) (InboundMessage, error)
}

// GmailReader reads the authenticated user's mailbox via the Gmail API.
type GmailReader struct {
	svc *gmail.Service
}

// NewGmailReader builds a Reader from the configured OAuth files.
func NewGmailReader(ctx context.Context, cfg config.GoogleConfig) (*GmailReader, error) {
	httpClient, err := googleauth.Client(ctx, cfg, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, err
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}
	return &GmailReader{svc: svc}, nil
}

func (r *GmailReader) Search(ctx context.Context, query string) ([]string, error) {
	resp, err := r.svc.Users.Messages.List("me").Q(query).MaxResults(20).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail search %q: %w", query, err)
	}
	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

func (r *GmailReader) Get(ctx context.Context, id string) (InboundMessage, error) {
	msg, err := r.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return InboundMessage{}, fmt.Errorf("gmail get %s: %w", id, err)
	}
	out := InboundMessage{ID: id}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			out.Subject = h.Value
		case "From":
			out.From = h.Value
		}
	}
	out.Body = extractBody(msg.Payload)
	return out, nil
}

// extractBody walks the MIME tree for the first text/plain part,
// falling back to whatever body data the root part carries.
func extractBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}
	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	for _, p := range part.Parts {
		if body := extractBody(p); body != "" {
			return body
		}
	}
	if part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	return ""
}

func decodeBody(data string) string {
	raw, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(data)
	if err != nil {
		return ""
	}
	return string(raw)
}
