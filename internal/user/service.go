package user

import (
	"nexussync/internal/errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service defines the interface for user business logic
type Service interface {
	Register(user *User) error
	Login(email, password string) (*User, error)
	GetUserByID(id string) (*User, error)
	ListUsers() ([]SafeUser, error)
	DeactivateUser(id string) error
}

// DefaultService implements Service
type DefaultService struct {
	repository UserRepository
}

// NewService creates a new user service
func NewService(repository UserRepository) Service {
	return &DefaultService{repository: repository}
}

// Register registers a new user
func (s *DefaultService) Register(user *User) error {
	// Check if user with email already exists
	_, err := s.repository.FindByEmail(user.Email)
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == nil {
		return errors.UnprocessableEntity("User already registered", nil)
	}

	// Hash the password before saving
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.UnprocessableEntity("Can't process password", err)
	}
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Avatar == "" {
		user.Avatar = "👤"
	}
	if user.Color == "" {
		user.Color = "#64748b"
	}

	// Create user
	return s.repository.Create(user)
}

// Login authenticates a user
func (s *DefaultService) Login(email, password string) (*User, error) {
	// Find user by email
	user, err := s.repository.FindByEmail(email)
	if err != nil {
		return nil, errors.Unauthorized("User not found", err)
	}

	// Check if user is active
	if !user.IsActive {
		return nil, errors.Unauthorized("User is not active", nil)
	}

	// Check password
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, errors.UnprocessableEntity("Wrong password", err)
	}

	return user, nil
}

// GetUserByID gets a user by ID
func (s *DefaultService) GetUserByID(id string) (*User, error) {
	return s.repository.FindByID(id)
}

// ListUsers returns all known users without sensitive fields
func (s *DefaultService) ListUsers() ([]SafeUser, error) {
	users, err := s.repository.All()
	if err != nil {
		return nil, err
	}
	out := make([]SafeUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToSafeUser())
	}
	return out, nil
}

// DeactivateUser deactivates a user
func (s *DefaultService) DeactivateUser(id string) error {
	return s.repository.Deactivate(id)
}
