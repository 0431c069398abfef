package users

import (
	"context"
	"errors"
	"fmt"

	"upload-manager/core/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrForbidden is returned when a user tries to modify another account.
	ErrForbidden = errors.New("you do not have permission to perform this action")
)

// Service manages user accounts.
type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	hashCost int
}

// Option customizes a Service.
type Option func(*Service)

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

// NewService creates a new user service.
func NewService(db *gorm.DB, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{db: db, logger: logger, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new user.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, validation.Field("username", "A user with that username already exists.")
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &User{Username: in.Username, Email: in.Email, Password: hash}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created", zap.String("username", user.Username), zap.Uint("id", user.ID))
	return user, nil
}

// List returns every user ordered by id.
func (s *Service) List(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return out, nil
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id uint) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByUsername returns the user with the given username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Update changes the email and password of the user with the given id. Only the user
// themself may do so; the username is kept.
func (s *Service) Update(ctx context.Context, actor string, id uint, in UpdateInput) (*User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Username != actor {
		return nil, ErrForbidden
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user.Email = in.Email
	user.Password = hash
	if err := s.db.WithContext(ctx).Model(user).Select("email", "password").Updates(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Authenticate checks HTTP Basic credentials against the stored hash.
func (s *Service) Authenticate(username, password string) bool {
	user, err := s.GetByUsername(context.Background(), username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("Authentication lookup failed", zap.Error(err))
		}
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}
