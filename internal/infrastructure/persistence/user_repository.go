package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/gym/backend/internal/domain/identity"
	"github.com/gym/backend/internal/domain/report"
	"github.com/gym/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

func (m *UserModel) toDomain() *identity.User {
	return &identity.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         identity.Role(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}

// FindByID returns a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, r.mapError(err, "failed to fetch user")
	}
	return m.toDomain(), nil
}

// FindByEmail returns a user by email, case-insensitively
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var m UserModel
	err := r.db.WithContext(ctx).
		Where("email = ?", identity.NormalizeEmail(email)).
		First(&m).Error
	if err != nil {
		return nil, r.mapError(err, "failed to fetch user")
	}
	return m.toDomain(), nil
}

// Create inserts a user and sets its ID
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	m := &UserModel{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return report.NewStorageError(report.EntityUsers, "failed to create user", err)
	}
	user.ID = m.ID
	return nil
}

func (r *GormUserRepository) mapError(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return report.NewStorageError(report.EntityUsers, message, err)
}

// isUniqueViolation recognises duplicate key errors from PostgreSQL and SQLite
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
