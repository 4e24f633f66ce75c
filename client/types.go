package client

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Ticket is the client-side view of a ticket.
type Ticket struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CustomerEmail string    `json:"customer_email"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Note is the client-side view of a note. TempID is set only on
// optimistic entries that have not been confirmed by the server yet.
type Note struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UserID    *int64    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	TempID    string    `json:"-"`
}

// Pagination mirrors the server's list envelope.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// TicketPage is one page of the ticket list.
type TicketPage struct {
	Data       []Ticket   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Stats is the aggregate payload.
type Stats struct {
	Total        int             `json:"total"`
	Open         int             `json:"open"`
	Pending      int             `json:"pending"`
	Resolved     int             `json:"resolved"`
	HighPriority int             `json:"highPriority"`
	Last7Days    []ActivityPoint `json:"last7Days"`
}

// ActivityPoint is one day of the creation histogram.
type ActivityPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TicketQuery describes a list request. The zero value asks for the first
// default-sized page with no filters.
type TicketQuery struct {
	Page     int
	Limit    int
	Status   string
	Priority string
	Search   string
}

// Encode renders the query in a canonical order, used both on the wire and
// as the cache key for the resulting page.
func (q TicketQuery) Encode() string {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.Priority != "" {
		values.Set("priority", q.Priority)
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	return values.Encode()
}

// TicketPatch carries the fields of an update mutation. Nil fields are
// left untouched.
type TicketPatch struct {
	Status   *string `json:"status,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

func (p TicketPatch) empty() bool {
	return p.Status == nil && p.Priority == nil
}

// APIError is a server-reported failure decoded from the error envelope.
type APIError struct {
	Status  int      `json:"-"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
