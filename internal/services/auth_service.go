package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"goldlegacy/internal/models"
	"goldlegacy/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles accounts, session tokens and role management.
type AuthService struct {
	userRepo   repositories.UserRepository
	audit      *AuditService
	jwtSecret  []byte
	tokenDurat time.Duration

	google googleConfig
}

// NewAuthService creates a new AuthService. Sessions are valid for 7 days,
// matching the cookie lifetime set by the handlers.
func NewAuthService(userRepo repositories.UserRepository, audit *AuditService, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		audit:      audit,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 7 * 24 * time.Hour,
		google:     defaultGoogleConfig(),
	}
}

// RegisterInput is the account-creation request body.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"omitempty,max=120"`
}

// Register creates a USER account and returns it with a fresh session token.
func (s *AuthService) Register(input RegisterInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = &name
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.IssueSession(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates by email and password. Both unknown email and bad
// password yield the same error so the response does not reveal which.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueSession(user)
	if err != nil {
		return nil, "", err
	}

	s.audit.Record("LOGIN", &user.ID, "user", &user.ID, map[string]any{"email": user.Email})

	return user, token, nil
}

// IssueSession signs a time-limited HS256 token carrying the user identity
// and role.
func (s *AuthService) IssueSession(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   now.Add(s.tokenDurat).Unix(),
		"iat":   now.Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// UserFromToken resolves the current user from a session token. Any failure
// (bad signature, expiry, deleted user) returns nil rather than an error;
// callers treat nil as "not signed in".
func (s *AuthService) UserFromToken(tokenString string) *models.User {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil
	}

	user, err := s.userRepo.GetByID(sub)
	if err != nil {
		return nil
	}
	return user
}

// UserUpdateInput carries the mutable admin-editable fields.
type UserUpdateInput struct {
	Role *models.UserRole `json:"role" validate:"omitempty,oneof=USER ADMIN"`
	Name *string          `json:"name" validate:"omitempty,max=120"`
}

// guardRoleChange enforces the standing invariant that at least one ADMIN
// exists. Invoked before any role mutation, independent of the update path.
func (s *AuthService) guardRoleChange(current *models.User, newRole models.UserRole) error {
	if current.Role != models.RoleAdmin || newRole == models.RoleAdmin {
		return nil
	}
	admins, err := s.userRepo.CountByRole(models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}

// UpdateUser applies an admin's role/name change to a user. Demoting the sole
// remaining admin is rejected regardless of who asks.
func (s *AuthService) UpdateUser(adminID, targetID string, input UserUpdateInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(targetID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Role != nil {
		if err := s.guardRoleChange(user, *input.Role); err != nil {
			return nil, err
		}
		user.Role = *input.Role
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			user.Name = nil
		} else {
			user.Name = &name
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	s.audit.Record("USER_UPDATE", &adminID, "user", &user.ID, map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	})

	return user, nil
}

// ListUsers returns a page of accounts for the admin back-office.
func (s *AuthService) ListUsers(page, pageSize int) ([]models.User, int64, error) {
	return s.userRepo.List(page, pageSize)
}

// EnsureAdmin bootstraps an ADMIN account when none exists, establishing the
// at-least-one-admin invariant at startup. No-op when an admin is already
// present or no credentials are configured.
func (s *AuthService) EnsureAdmin(email, password string) error {
	admins, err := s.userRepo.CountByRole(models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}
	if email == "" || password == "" {
		log.Println("No admin account exists and ADMIN_EMAIL/ADMIN_PASSWORD are not set")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}

	admin := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := s.userRepo.Create(admin); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	log.Printf("Bootstrapped admin account %s", admin.Email)
	return nil
}
