package auth

import (
	"errors"
	"os"
	"time"

	"tirefinder/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service handles authentication logic
type Service struct {
	userRepo UserRepository
}

// UserRepository interface for user data access
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uuid.UUID) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	// Password reset methods
	CreatePasswordResetToken(token *models.PasswordResetToken) error
	GetPasswordResetToken(token string) (*models.PasswordResetToken, error)
	MarkPasswordResetTokenAsUsed(tokenID uuid.UUID) error
	InvalidateUserPasswordResetTokens(userID uuid.UUID) error
}

// NewService creates a new auth service
func NewService(userRepo UserRepository) *Service {
	return &Service{
		userRepo: userRepo,
	}
}

// LoginRequest represents login request data
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents login response data
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
	ExpiresIn    int64       `json:"expires_in"`
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Type   string    `json:"type"` // access or refresh
	jwt.RegisteredClaims
}

// ErrEmailAlreadyUsed is returned by Register when the email is taken
var ErrEmailAlreadyUsed = errors.New("email already registered")

// Register creates a new account with the default user role
func (s *Service) Register(req models.RegisterRequest) (*models.User, error) {
	if existing, err := s.userRepo.GetByEmail(req.Email); err == nil && existing != nil {
		return nil, ErrEmailAlreadyUsed
	}

	hashedPassword, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Email:    req.Email,
		Password: hashedPassword,
		Name:     req.Name,
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, errors.New("failed to create user")
	}

	return user, nil
}

// Login authenticates a user and returns tokens
func (s *Service) Login(req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}

	if !user.IsActive {
		return nil, errors.New("user account is disabled")
	}

	if !s.verifyPassword(req.Password, user.Password) {
		return nil, errors.New("invalid credentials")
	}

	// Update last login
	now := time.Now()
	user.LastLoginAt = &now
	s.userRepo.Update(user)

	return s.buildLoginResponse(user)
}

// RefreshToken generates new tokens from a refresh token
func (s *Service) RefreshToken(tokenString string) (*LoginResponse, error) {
	claims, err := s.validateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Type != "refresh" {
		return nil, errors.New("invalid token type")
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if !user.IsActive {
		return nil, errors.New("user account is disabled")
	}

	return s.buildLoginResponse(user)
}

func (s *Service) buildLoginResponse(user *models.User) (*LoginResponse, error) {
	accessToken, err := s.generateToken(user, "access", getEnvOrDefault("JWT_ACCESS_DURATION", "15m"), 15*time.Minute)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateToken(user, "refresh", getEnvOrDefault("JWT_REFRESH_DURATION", "24h"), 24*time.Hour)
	if err != nil {
		return nil, err
	}

	accessDuration, _ := time.ParseDuration(getEnvOrDefault("JWT_ACCESS_DURATION", "15m"))

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
		ExpiresIn:    int64(accessDuration.Seconds()),
	}, nil
}

// ValidateToken validates and parses a JWT token
func (s *Service) ValidateToken(tokenString string) (*TokenClaims, error) {
	return s.validateToken(tokenString)
}

// HashPassword hashes a password with bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// UpdateProfile updates user profile information
func (s *Service) UpdateProfile(userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	user.Name = req.Name
	user.Email = req.Email

	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.New("failed to update user profile")
	}

	return user, nil
}

// ChangePassword changes user password
func (s *Service) ChangePassword(userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return errors.New("user not found")
	}

	if !s.verifyPassword(currentPassword, user.Password) {
		return errors.New("current password is incorrect")
	}

	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return errors.New("failed to hash new password")
	}

	user.Password = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		return errors.New("failed to update password")
	}

	return nil
}

// RequestPasswordReset creates a password reset token for email delivery
func (s *Service) RequestPasswordReset(email string) (*models.PasswordResetToken, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		// Don't reveal if email exists or not
		return nil, errors.New("if the email exists, a reset link has been sent")
	}

	// Invalidate any existing tokens for this user
	if err := s.userRepo.InvalidateUserPasswordResetTokens(user.ID); err != nil {
		return nil, errors.New("failed to process password reset request")
	}

	resetToken := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(1 * time.Hour),
		IsUsed:    false,
		User:      user,
	}

	if err := s.userRepo.CreatePasswordResetToken(resetToken); err != nil {
		return nil, errors.New("failed to create password reset token")
	}

	return resetToken, nil
}

// ResetPassword consumes a reset token and sets a new password
func (s *Service) ResetPassword(token, newPassword string) error {
	resetToken, err := s.userRepo.GetPasswordResetToken(token)
	if err != nil {
		return errors.New("invalid or expired reset token")
	}

	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return errors.New("failed to hash new password")
	}

	user, err := s.userRepo.GetByID(resetToken.UserID)
	if err != nil {
		return errors.New("user not found")
	}

	user.Password = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		return errors.New("failed to update password")
	}

	return s.userRepo.MarkPasswordResetTokenAsUsed(resetToken.ID)
}

// generateToken generates one signed token of the given type
func (s *Service) generateToken(user *models.User, tokenType, durationStr string, fallback time.Duration) (string, error) {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		duration = fallback
	}

	claims := TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "tirefinder",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// validateToken validates and parses a JWT token
func (s *Service) validateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// verifyPassword verifies a password against its hash
func (s *Service) verifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// getEnvOrDefault gets an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
