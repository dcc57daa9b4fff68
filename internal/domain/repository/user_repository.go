package repository

import "github.com/jhoicas/stockpilot-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para operadores (DIP).
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	// FindByEmail devuelve (nil, nil) si no existe.
	FindByEmail(email string) (*entity.User, error)
}
