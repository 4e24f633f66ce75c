package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// NoteRepository manages the append-only annotation log.
type NoteRepository interface {
	Insert(ctx context.Context, note *domain.Note) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Note, error)
}

type noteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository builds repository.
func NewNoteRepository(pool *pgxpool.Pool) NoteRepository {
	return &noteRepository{pool: pool}
}

func (r *noteRepository) Insert(ctx context.Context, note *domain.Note) error {
	const query = `
        INSERT INTO notes (ticket_id, user_id, text)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		note.TicketID,
		note.AuthorID,
		note.Text,
	).Scan(&note.ID, &note.CreatedAt)
}

func (r *noteRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Note, error) {
	const query = `
        SELECT n.id, n.ticket_id, n.user_id, n.text, n.created_at,
               COALESCE(u.name, ''), COALESCE(u.email, '')
        FROM notes n
        LEFT JOIN users u ON u.id = n.user_id
        WHERE n.ticket_id = $1
        ORDER BY n.created_at DESC, n.id DESC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Note{}
	for rows.Next() {
		var note domain.Note
		if err := rows.Scan(
			&note.ID,
			&note.TicketID,
			&note.AuthorID,
			&note.Text,
			&note.CreatedAt,
			&note.AuthorName,
			&note.AuthorEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}
