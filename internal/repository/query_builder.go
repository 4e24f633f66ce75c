package repository

import (
	"fmt"
	"strings"

	"github.com/spec-kit/support-inbox/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TicketFilter is the typed filter specification consumed by the query
// builder. Unknown status or priority values are silently ignored rather
// than rejected; filtering is deliberately lenient.
type TicketFilter struct {
	Page     int
	PageSize int
	Status   string
	Priority string
	Search   string
}

// Normalized returns a copy with page and page size clamped to their
// allowed ranges: page >= 1, page size in [1,100], default 20.
func (f TicketFilter) Normalized() TicketFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	return f
}

// Offset returns the row offset for the normalized filter.
func (f TicketFilter) Offset() int {
	n := f.Normalized()
	return (n.Page - 1) * n.PageSize
}

const ticketColumns = `id, title, description, customer_email, status, priority, created_at, updated_at`

// buildTicketWhere assembles the WHERE clause shared by the count and page
// queries. Values are always bound positionally; user input never reaches
// the query text.
func buildTicketWhere(f TicketFilter) (string, []any) {
	clauses := []string{"deleted_at IS NULL"}
	args := []any{}

	if status := domain.TicketStatus(f.Status); f.Status != "" && status.Valid() {
		args = append(args, status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if priority := domain.TicketPriority(f.Priority); f.Priority != "" && priority.Valid() {
		args = append(args, priority)
		clauses = append(clauses, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(title ILIKE %s OR customer_email ILIKE %s)", placeholder, placeholder))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// BuildTicketCountSQL produces the total-count query for the filter.
func BuildTicketCountSQL(f TicketFilter) (string, []any) {
	where, args := buildTicketWhere(f)
	return "SELECT COUNT(*) FROM tickets " + where, args
}

// BuildTicketPageSQL produces the page-data query for the filter. Rows are
// ordered newest-first with id as the tie-break so paging stays
// deterministic when timestamps collide.
func BuildTicketPageSQL(f TicketFilter) (string, []any) {
	f = f.Normalized()
	where, args := buildTicketWhere(f)

	args = append(args, f.PageSize)
	limitPos := len(args)
	args = append(args, f.Offset())
	offsetPos := len(args)

	query := fmt.Sprintf(`SELECT %s FROM tickets %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		ticketColumns, where, limitPos, offsetPos)
	return query, args
}
