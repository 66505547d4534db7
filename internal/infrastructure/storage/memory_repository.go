package storage

import (
	"context"
	"sync"

	"groundtruth-bot/internal/domain/entity"
	"groundtruth-bot/internal/domain/port"
)

// MemoryRepository in-memory хранилище пользователей и их последних разметок
type MemoryRepository struct {
	mu      sync.RWMutex
	users   map[int64]*entity.User
	results map[int64]*entity.GroundTruth
}

// NewMemoryRepository создаёт новое in-memory хранилище
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:   make(map[int64]*entity.User),
		results: make(map[int64]*entity.GroundTruth),
	}
}

// Get возвращает пользователя по ID, создаёт нового если не найден
func (r *MemoryRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, exists := r.users[userID]; exists {
		return user, nil
	}

	user := entity.NewUser(userID, chatID)
	r.users[userID] = user
	return user, nil
}

// Save сохраняет состояние пользователя
func (r *MemoryRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = user
	r.mu.Unlock()

	return nil
}

// UpdateState обновляет состояние пользователя
func (r *MemoryRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, exists := r.users[userID]; exists {
		user.SetState(state)
	}

	return nil
}

// SaveResult запоминает последнюю разметку пользователя
func (r *MemoryRepository) SaveResult(ctx context.Context, userID int64, result *entity.GroundTruth) error {
	r.mu.Lock()
	r.results[userID] = result
	r.mu.Unlock()

	return nil
}

// LastResult возвращает последнюю разметку или nil
func (r *MemoryRepository) LastResult(ctx context.Context, userID int64) (*entity.GroundTruth, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.results[userID], nil
}

// Проверка реализации интерфейсов
var (
	_ port.UserRepository   = (*MemoryRepository)(nil)
	_ port.ResultRepository = (*MemoryRepository)(nil)
)
