package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"healthmate/internal/domain"
)

// ChatRepository persiste el log de chat; solo admite altas y lecturas.
type ChatRepository interface {
	Create(ctx context.Context, entry domain.ChatEntry) error
	ListByUserID(ctx context.Context, userID string) ([]domain.ChatEntry, error)
	History(ctx context.Context, userID, reportName string) ([]domain.ChatEntry, error)
}

type PgChatRepository struct {
	pool *pgxpool.Pool
	obs  Observer
}

func NewPgChatRepository(pool *pgxpool.Pool, obs Observer) *PgChatRepository {
	return &PgChatRepository{pool: pool, obs: observerOrNop(obs)}
}

func (r *PgChatRepository) Create(ctx context.Context, entry domain.ChatEntry) error {
	const query = `
		INSERT INTO chats (id, user_id, report_name, message, response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	return r.obs.ObserveDB("chats.create", func() error {
		_, err := r.pool.Exec(ctx, query,
			entry.ID,
			entry.UserID,
			entry.ReportName,
			entry.Message,
			entry.Response,
			entry.CreatedAt,
		)
		return err
	})
}

// ListByUserID devuelve todas las entradas del usuario, de la mas reciente a la mas antigua.
func (r *PgChatRepository) ListByUserID(ctx context.Context, userID string) ([]domain.ChatEntry, error) {
	const query = `
		SELECT id, user_id, report_name, message, response, created_at
		FROM chats
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	var entries []domain.ChatEntry
	err := r.obs.ObserveDB("chats.list", func() error {
		var err error
		entries, err = r.query(ctx, query, userID)
		return err
	})
	return entries, err
}

// History devuelve el historial en orden cronologico; reportName vacio no filtra.
func (r *PgChatRepository) History(ctx context.Context, userID, reportName string) ([]domain.ChatEntry, error) {
	const query = `
		SELECT id, user_id, report_name, message, response, created_at
		FROM chats
		WHERE user_id = $1 AND ($2 = '' OR report_name = $2)
		ORDER BY created_at ASC, id ASC
	`
	var entries []domain.ChatEntry
	err := r.obs.ObserveDB("chats.history", func() error {
		var err error
		entries, err = r.query(ctx, query, userID, reportName)
		return err
	})
	return entries, err
}

func (r *PgChatRepository) query(ctx context.Context, query string, args ...any) ([]domain.ChatEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.ChatEntry, 0)
	for rows.Next() {
		var e domain.ChatEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.ReportName,
			&e.Message,
			&e.Response,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
