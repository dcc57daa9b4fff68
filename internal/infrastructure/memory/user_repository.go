package memory

import (
	"strings"
	"sync"

	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
)

// UserRepository operadores en memoria (indexados por ID y por email).
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string
}

// NewUserRepository crea un repositorio vacío.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entity.User),
		byEmail: make(map[string]string),
	}
}

// Verify interface compliance
var _ repository.UserRepository = (*UserRepository)(nil)

// Create guarda un operador. ErrDuplicate si el email ya existe.
func (r *UserRepository) Create(user *entity.User) error {
	if user == nil || user.ID == "" || user.Email == "" {
		return domain.ErrInvalidInput
	}
	key := strings.ToLower(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[key]; ok {
		return domain.ErrDuplicate
	}
	cp := *user
	r.byID[user.ID] = &cp
	r.byEmail[key] = user.ID
	return nil
}

// GetByID devuelve el operador o ErrUserNotFound.
func (r *UserRepository) GetByID(id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// FindByEmail devuelve (nil, nil) si no existe.
func (r *UserRepository) FindByEmail(email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	cp := *r.byID[id]
	return &cp, nil
}
