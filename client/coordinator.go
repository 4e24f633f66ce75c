package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-inbox/client/cache"
)

// MutationState tracks one optimistic write through its lifecycle.
type MutationState int

const (
	MutationIdle MutationState = iota
	MutationPending
	MutationApplied
	MutationCommitted
	MutationRolledBack
	MutationReconciling
)

func (s MutationState) String() string {
	switch s {
	case MutationPending:
		return "pending"
	case MutationApplied:
		return "applied"
	case MutationCommitted:
		return "committed"
	case MutationRolledBack:
		return "rolled_back"
	case MutationReconciling:
		return "reconciling"
	default:
		return "idle"
	}
}

const (
	listKeyPrefix = "tickets:"
	statsKey      = cache.Key("stats")
)

func ticketKey(id int64) cache.Key {
	return cache.Key(fmt.Sprintf("ticket:%d", id))
}

func listKey(q TicketQuery) cache.Key {
	return cache.Key(listKeyPrefix + q.Encode())
}

func notesKey(ticketID int64) cache.Key {
	return cache.Key(fmt.Sprintf("notes:%d", ticketID))
}

// Coordinator keeps the client's cached view of tickets, notes, and stats
// consistent across concurrent, possibly-failing mutations.
//
// Every mutation walks the same protocol: cancel in-flight reads for the
// keys it will touch, snapshot those keys, write an optimistic value, issue
// the network call, restore the snapshot on failure, and unconditionally
// mark the keys stale and re-fetch afterwards. Reads started after the
// optimistic write are not blocked. Two mutations on the same entity carry
// independent snapshots and do not coordinate with each other.
type Coordinator struct {
	api  *Client
	self string

	mu      sync.Mutex
	cache   *cache.Store
	reads   map[cache.Key]*readHandle
	queries map[cache.Key]TicketQuery

	// observe, when set, receives every mutation state transition.
	observe func(MutationState)
}

type readHandle struct {
	cancel context.CancelFunc
}

// NewCoordinator wraps an API client with the optimistic cache protocol.
// selfName labels synthesized optimistic notes until the server confirms
// the real author record.
func NewCoordinator(api *Client, store *cache.Store, selfName string) *Coordinator {
	if store == nil {
		store = cache.NewStore()
	}
	return &Coordinator{
		api:     api,
		self:    selfName,
		cache:   store,
		reads:   make(map[cache.Key]*readHandle),
		queries: make(map[cache.Key]TicketQuery),
	}
}

// Cache exposes the underlying store.
func (c *Coordinator) Cache() *cache.Store {
	return c.cache
}

type mutation struct {
	state   MutationState
	observe func(MutationState)
}

func (m *mutation) transition(next MutationState) {
	m.state = next
	if m.observe != nil {
		m.observe(next)
	}
}

// --- reads ---------------------------------------------------------------

// Tickets returns one page of the ticket list. On failure the last cached
// page is returned alongside the error so callers can keep prior data
// visible with an inline error indicator.
func (c *Coordinator) Tickets(ctx context.Context, query TicketQuery) (*TicketPage, error) {
	key := listKey(query)

	c.mu.Lock()
	c.queries[key] = query
	c.mu.Unlock()

	rctx, handle := c.beginRead(ctx, key)
	page, err := c.api.ListTickets(rctx, query)
	current := c.endRead(key, handle)

	if err != nil {
		return c.cachedPageOr(key, err)
	}
	if current {
		c.cache.Set(key, page)
	}
	return page, nil
}

// cachedPageOr settles a failed list read from the cache: the last cached
// page stays visible alongside the error, and a read cancelled by a
// mutation settles cleanly from the cache.
func (c *Coordinator) cachedPageOr(key cache.Key, err error) (*TicketPage, error) {
	if cached, ok := c.cache.Get(key); ok {
		if page, ok := cached.(*TicketPage); ok {
			if errors.Is(err, context.Canceled) {
				return page, nil
			}
			return page, err
		}
	}
	return nil, err
}

// Ticket returns a single ticket view.
func (c *Coordinator) Ticket(ctx context.Context, id int64) (*Ticket, error) {
	key := ticketKey(id)

	rctx, handle := c.beginRead(ctx, key)
	ticket, err := c.api.GetTicket(rctx, id)
	current := c.endRead(key, handle)

	if err != nil {
		if isNotFound(err) {
			c.cache.Delete(key)
			return nil, err
		}
		if cached, ok := c.cache.Get(key); ok {
			if errors.Is(err, context.Canceled) {
				return cached.(*Ticket), nil
			}
			return cached.(*Ticket), err
		}
		return nil, err
	}
	if current {
		c.cache.Set(key, ticket)
	}
	return ticket, nil
}

// Notes returns a ticket's annotation log, most recent first.
func (c *Coordinator) Notes(ctx context.Context, ticketID int64) ([]Note, error) {
	key := notesKey(ticketID)

	rctx, handle := c.beginRead(ctx, key)
	notes, err := c.api.ListNotes(rctx, ticketID)
	current := c.endRead(key, handle)

	if err != nil {
		if cached, ok := c.cache.Get(key); ok {
			if errors.Is(err, context.Canceled) {
				return cached.([]Note), nil
			}
			return cached.([]Note), err
		}
		return nil, err
	}
	if current {
		c.cache.Set(key, notes)
	}
	return notes, nil
}

// Stats returns the aggregate view.
func (c *Coordinator) Stats(ctx context.Context) (*Stats, error) {
	rctx, handle := c.beginRead(ctx, statsKey)
	stats, err := c.api.Stats(rctx)
	current := c.endRead(statsKey, handle)

	if err != nil {
		if cached, ok := c.cache.Get(statsKey); ok {
			if errors.Is(err, context.Canceled) {
				return cached.(*Stats), nil
			}
			return cached.(*Stats), err
		}
		return nil, err
	}
	if current {
		c.cache.Set(statsKey, stats)
	}
	return stats, nil
}

// --- mutations -----------------------------------------------------------

// UpdateTicket optimistically applies a status/priority patch to the
// cached ticket and every cached list containing it, then settles against
// the server. On failure every touched key is restored to its exact
// pre-mutation value and the server error is returned.
func (c *Coordinator) UpdateTicket(ctx context.Context, id int64, patch TicketPatch) (*Ticket, error) {
	m := &mutation{observe: c.observe}
	m.transition(MutationPending)

	c.mu.Lock()
	touched := c.ticketViewKeysLocked(id)
	c.cancelReadsLocked(ticketKey(id))
	c.cancelReadPrefixLocked(listKeyPrefix)
	snap := c.cache.Snapshot(touched...)
	c.applyTicketPatchLocked(id, patch)
	c.mu.Unlock()
	m.transition(MutationApplied)

	// the mutation itself is never cancelled; it runs to completion
	ticket, err := c.api.UpdateTicket(ctx, id, patch)
	if err != nil {
		c.mu.Lock()
		c.cache.Restore(snap)
		c.mu.Unlock()
		m.transition(MutationRolledBack)
	} else {
		c.cache.Set(ticketKey(id), ticket)
		m.transition(MutationCommitted)
	}

	m.transition(MutationReconciling)
	c.reconcile(ctx, touched)
	m.transition(MutationIdle)

	return ticket, err
}

// AddNote optimistically prepends a temporary-id note to the cached notes
// list, then settles against the server.
func (c *Coordinator) AddNote(ctx context.Context, ticketID int64, text string) (*Note, error) {
	m := &mutation{observe: c.observe}
	m.transition(MutationPending)

	key := notesKey(ticketID)

	c.mu.Lock()
	c.cancelReadsLocked(key)
	snap := c.cache.Snapshot(key)
	c.prependTempNoteLocked(key, text)
	c.mu.Unlock()
	m.transition(MutationApplied)

	note, err := c.api.AddNote(ctx, ticketID, text)
	if err != nil {
		c.mu.Lock()
		c.cache.Restore(snap)
		c.mu.Unlock()
		m.transition(MutationRolledBack)
	} else {
		m.transition(MutationCommitted)
	}

	m.transition(MutationReconciling)
	c.reconcile(ctx, []cache.Key{key})
	m.transition(MutationIdle)

	return note, err
}

// DeleteTicket optimistically removes the ticket from the single-entity
// view and every cached list, then settles against the server.
func (c *Coordinator) DeleteTicket(ctx context.Context, id int64) error {
	m := &mutation{observe: c.observe}
	m.transition(MutationPending)

	c.mu.Lock()
	touched := c.ticketViewKeysLocked(id)
	touched = append(touched, statsKey)
	c.cancelReadsLocked(ticketKey(id), statsKey)
	c.cancelReadPrefixLocked(listKeyPrefix)
	snap := c.cache.Snapshot(touched...)
	c.removeTicketLocked(id)
	c.mu.Unlock()
	m.transition(MutationApplied)

	err := c.api.DeleteTicket(ctx, id)
	if err != nil {
		c.mu.Lock()
		c.cache.Restore(snap)
		c.mu.Unlock()
		m.transition(MutationRolledBack)
	} else {
		m.transition(MutationCommitted)
	}

	m.transition(MutationReconciling)
	c.reconcile(ctx, touched)
	m.transition(MutationIdle)

	return err
}

// --- protocol internals --------------------------------------------------

// beginRead registers a cancellable context for the key so a later
// mutation can cancel this read before writing its optimistic value.
func (c *Coordinator) beginRead(ctx context.Context, key cache.Key) (context.Context, *readHandle) {
	rctx, cancel := context.WithCancel(ctx)
	handle := &readHandle{cancel: cancel}

	c.mu.Lock()
	if prev, ok := c.reads[key]; ok {
		prev.cancel()
	}
	c.reads[key] = handle
	c.mu.Unlock()

	return rctx, handle
}

// endRead unregisters the handle and reports whether it was still the
// current read for the key. A superseded read must not write its result
// into the cache: the optimistic value would be clobbered by stale data.
func (c *Coordinator) endRead(key cache.Key, handle *readHandle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reads[key] != handle {
		return false
	}
	delete(c.reads, key)
	handle.cancel()
	return true
}

func (c *Coordinator) cancelReadsLocked(keys ...cache.Key) {
	for _, key := range keys {
		if handle, ok := c.reads[key]; ok {
			handle.cancel()
			delete(c.reads, key)
		}
	}
}

func (c *Coordinator) cancelReadPrefixLocked(prefix string) {
	for key, handle := range c.reads {
		if len(key) >= len(prefix) && string(key[:len(prefix)]) == prefix {
			handle.cancel()
			delete(c.reads, key)
		}
	}
}

// ticketViewKeysLocked collects the single-entity key plus every cached
// list view that contains the ticket.
func (c *Coordinator) ticketViewKeysLocked(id int64) []cache.Key {
	keys := []cache.Key{ticketKey(id)}
	for _, key := range c.cache.Keys(listKeyPrefix) {
		value, ok := c.cache.Get(key)
		if !ok {
			continue
		}
		page, ok := value.(*TicketPage)
		if !ok {
			continue
		}
		for i := range page.Data {
			if page.Data[i].ID == id {
				keys = append(keys, key)
				break
			}
		}
	}
	return keys
}

// applyTicketPatchLocked writes the locally-synthesized result of a patch
// into the cache. Copies are made so the snapshot's captured values stay
// untouched for an exact rollback.
func (c *Coordinator) applyTicketPatchLocked(id int64, patch TicketPatch) {
	now := time.Now()

	if value, ok := c.cache.Get(ticketKey(id)); ok {
		if prev, ok := value.(*Ticket); ok {
			next := *prev
			mergePatch(&next, patch, now)
			c.cache.Set(ticketKey(id), &next)
		}
	}

	for _, key := range c.cache.Keys(listKeyPrefix) {
		value, ok := c.cache.Get(key)
		if !ok {
			continue
		}
		page, ok := value.(*TicketPage)
		if !ok {
			continue
		}
		updated := false
		data := make([]Ticket, len(page.Data))
		copy(data, page.Data)
		for i := range data {
			if data[i].ID == id {
				mergePatch(&data[i], patch, now)
				updated = true
			}
		}
		if updated {
			next := *page
			next.Data = data
			c.cache.Set(key, &next)
		}
	}
}

func mergePatch(ticket *Ticket, patch TicketPatch, now time.Time) {
	if patch.Status != nil {
		ticket.Status = *patch.Status
	}
	if patch.Priority != nil {
		ticket.Priority = *patch.Priority
	}
	ticket.UpdatedAt = now
}

func (c *Coordinator) prependTempNoteLocked(key cache.Key, text string) {
	var prev []Note
	if value, ok := c.cache.Get(key); ok {
		prev, _ = value.([]Note)
	}

	temp := Note{
		TempID:    "temp-" + uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now(),
		UserName:  c.self,
	}

	next := make([]Note, 0, len(prev)+1)
	next = append(next, temp)
	next = append(next, prev...)
	c.cache.Set(key, next)
}

func (c *Coordinator) removeTicketLocked(id int64) {
	c.cache.Delete(ticketKey(id))

	for _, key := range c.cache.Keys(listKeyPrefix) {
		value, ok := c.cache.Get(key)
		if !ok {
			continue
		}
		page, ok := value.(*TicketPage)
		if !ok {
			continue
		}
		data := make([]Ticket, 0, len(page.Data))
		removed := false
		for i := range page.Data {
			if page.Data[i].ID == id {
				removed = true
				continue
			}
			data = append(data, page.Data[i])
		}
		if removed {
			next := *page
			next.Data = data
			next.Pagination.Total--
			c.cache.Set(key, &next)
		}
	}
}

// reconcile marks the touched keys stale and re-fetches them so the cache
// converges on authoritative server state. It runs after every mutation,
// success or failure, so a rollback is always followed by a correcting
// re-fetch. Fetch errors leave the key stale for the next read.
func (c *Coordinator) reconcile(ctx context.Context, keys []cache.Key) {
	c.cache.Invalidate(keys...)

	for _, key := range keys {
		switch {
		case key == statsKey:
			_, _ = c.Stats(ctx)
		case hasPrefix(key, listKeyPrefix):
			c.mu.Lock()
			query, ok := c.queries[key]
			c.mu.Unlock()
			if ok {
				_, _ = c.Tickets(ctx, query)
			}
		case hasPrefix(key, "ticket:"):
			var id int64
			if _, err := fmt.Sscanf(string(key), "ticket:%d", &id); err == nil {
				_, _ = c.Ticket(ctx, id)
			}
		case hasPrefix(key, "notes:"):
			var id int64
			if _, err := fmt.Sscanf(string(key), "notes:%d", &id); err == nil {
				_, _ = c.Notes(ctx, id)
			}
		}
	}
}

func hasPrefix(key cache.Key, prefix string) bool {
	return len(key) >= len(prefix) && string(key[:len(prefix)]) == prefix
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
