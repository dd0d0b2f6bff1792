package repository

import (
	"context"
	"errors"

	"perch/internal/cache"
	"perch/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
//
// Single-record lookups return (nil, nil) when the record is absent;
// absence is a domain condition the services translate, not a storage error.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	Recommend(ctx context.Context, viewerID uint, page OffsetPage) ([]*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// cachedUser is the cache serialization of a User. The entity's JSON shape
// hides the password hash from API responses, so caching the entity directly
// would hand back users with an empty hash; a later Save would then persist
// that emptiness. The hash travels in its own field instead. The soft-delete
// marker needs no such treatment: First never returns deleted rows, so it is
// always zero here.
type cachedUser struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var rec cachedUser
	err := cache.Aside(ctx, cache.UserKey(id), &rec, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&rec.User, id).Error; err != nil {
			return err
		}
		rec.PasswordHash = rec.User.Password
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user := rec.User
	user.Password = rec.PasswordHash
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return err
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// Recommend returns the offset-paginated candidate set for user
// recommendations: everyone except the viewer and hidden accounts,
// ascending by id.
func (r *userRepository) Recommend(ctx context.Context, viewerID uint, page OffsetPage) ([]*models.User, error) {
	var users []*models.User
	q := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("users.visibility <> ?", models.VisibilityHidden)
	if viewerID != 0 {
		q = q.Where("users.id <> ?", viewerID)
	}
	err := ApplyOffset(q, "users", page).Find(&users).Error
	return users, err
}
