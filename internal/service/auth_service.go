package service

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/models"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/repository"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/utils"
)

// AuthService authenticates API users and issues tokens.
type AuthService struct {
	userRepo *repository.AdminUserRepository
}

// NewAuthService constructs a new AuthService.
func NewAuthService(userRepo *repository.AdminUserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Login verifies the credentials and returns a signed JWT.
func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		log.Warn().Str("email", email).Msg("login attempt for unknown user")
		return "", utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("login attempt for inactive account")
		return "", utils.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("password verification failed")
		return "", utils.ErrInvalidCredentials
	}

	log.Info().Str("email", email).Msg("login successful")
	return utils.GenerateJWT(user.ID, user.Email)
}

// CreateUser registers a new API user with a bcrypt-hashed password.
func (s *AuthService) CreateUser(email, password, name string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		IsActive:     true,
	}
	return s.userRepo.Create(user)
}
