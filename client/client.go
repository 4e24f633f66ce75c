// Package client is the Go SDK for the support-inbox API. Client issues
// the raw HTTP calls; Coordinator layers the optimistic cache protocol on
// top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client talks to the support-inbox REST API with a bearer credential.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// New creates an API client for the given base URL and bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTickets fetches one filtered, paginated page of tickets.
func (c *Client) ListTickets(ctx context.Context, query TicketQuery) (*TicketPage, error) {
	path := "/tickets"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var page TicketPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetTicket fetches a single live ticket.
func (c *Client) GetTicket(ctx context.Context, id int64) (*Ticket, error) {
	var ticket Ticket
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tickets/%d", id), nil, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicket applies a status/priority patch and returns the updated
// ticket.
func (c *Client) UpdateTicket(ctx context.Context, id int64, patch TicketPatch) (*Ticket, error) {
	var ticket Ticket
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/tickets/%d", id), patch, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// DeleteTicket soft-deletes a ticket.
func (c *Client) DeleteTicket(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tickets/%d", id), nil, nil)
}

// ListNotes fetches a ticket's notes, most recent first.
func (c *Client) ListNotes(ctx context.Context, ticketID int64) ([]Note, error) {
	var notes []Note
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tickets/%d/notes", ticketID), nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// AddNote appends a note to a ticket.
func (c *Client) AddNote(ctx context.Context, ticketID int64, text string) (*Note, error) {
	var note Note
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/tickets/%d/notes", ticketID), body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// Stats fetches the summary counts and the 7-day series.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && json.Unmarshal(raw, &envelope) == nil && len(envelope.Error) > 0 {
		// the error field is either an object or a bare string
		if json.Unmarshal(envelope.Error, apiErr) != nil {
			var msg string
			if json.Unmarshal(envelope.Error, &msg) == nil {
				apiErr.Message = msg
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
