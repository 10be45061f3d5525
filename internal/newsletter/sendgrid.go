package newsletter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
)

const contactsEndpoint = "/v3/marketing/contacts"

// DefaultSendgridHost is the public SendGrid API host.
const DefaultSendgridHost = "https://api.sendgrid.com"

type sendFunc func(ctx context.Context, req rest.Request) (*rest.Response, error)

// SendgridSubscriber upserts contacts through the SendGrid Marketing API.
type SendgridSubscriber struct {
	apiKey  string
	host    string
	listIDs []string
	send    sendFunc
}

type contactsPayload struct {
	ListIDs  []string  `json:"list_ids,omitempty"`
	Contacts []contact `json:"contacts"`
}

type contact struct {
	Email string `json:"email"`
}

func NewSendgridSubscriber(apiKey, host string, listIDs []string) (*SendgridSubscriber, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("sendgrid api key required")
	}
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		host = DefaultSendgridHost
	}
	ids := make([]string, 0, len(listIDs))
	for _, id := range listIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return &SendgridSubscriber{
		apiKey:  apiKey,
		host:    host,
		listIDs: ids,
		send:    sendgrid.MakeRequestWithContext,
	}, nil
}

func (s *SendgridSubscriber) Subscribe(ctx context.Context, email string) error {
	body, err := json.Marshal(contactsPayload{
		ListIDs:  s.listIDs,
		Contacts: []contact{{Email: email}},
	})
	if err != nil {
		return fmt.Errorf("encode contacts payload: %w", err)
	}

	req := sendgrid.GetRequest(s.apiKey, contactsEndpoint, s.host)
	req.Method = rest.Put
	req.Body = body

	resp, err := s.send(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid contacts upsert failed: status %d: %s", resp.StatusCode, truncate(resp.Body, 256))
	}
	return nil
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
