package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"healthmate/internal/domain"
)

// MemoryUserRepository guarda usuarios en memoria, con la misma unicidad de email
// que la tabla users. Util sin DATABASE_URL y en tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return ErrDuplicateEmail
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return r.byID[id], nil
}

// Count devuelve la cantidad de usuarios guardados.
func (r *MemoryUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// MemoryChatRepository es un log de chat append-only en memoria.
type MemoryChatRepository struct {
	mu      sync.RWMutex
	entries []domain.ChatEntry
}

func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{}
}

func (r *MemoryChatRepository) Create(_ context.Context, entry domain.ChatEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *MemoryChatRepository) ListByUserID(_ context.Context, userID string) ([]domain.ChatEntry, error) {
	out := r.filter(userID, "")
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryChatRepository) History(_ context.Context, userID, reportName string) ([]domain.ChatEntry, error) {
	out := r.filter(userID, reportName)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryChatRepository) filter(userID, reportName string) []domain.ChatEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ChatEntry, 0)
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		if reportName != "" && e.ReportName != reportName {
			continue
		}
		out = append(out, e)
	}
	return out
}
