package services_test

import (
	"fmt"
	"testing"
	"time"

	"goldlegacy/internal/models"
	"goldlegacy/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) List(page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(page, pageSize)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) CountByRole(role models.UserRole) (int64, error) {
	args := m.Called(role)
	return args.Get(0).(int64), args.Error(1)
}

func notFoundErr(what string) error {
	return fmt.Errorf("%s: %w", what, gorm.ErrRecordNotFound)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil, "test_jwt_secret")

	input := services.RegisterInput{
		Email:    "Maria@Example.com",
		Password: "password123",
		Name:     "María",
	}

	mockRepo.On("GetByEmail", "maria@example.com").Return(nil, notFoundErr("user")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, token, err := authService.Register(input)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	// Email is stored lowercased and the password never in the clear.
	assert.Equal(t, "maria@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Email already registered
	mockRepo.On("GetByEmail", "maria@example.com").Return(&models.User{ID: "1"}, nil).Once()
	_, _, err = authService.Register(input)
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, nil, testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           "user-123",
		Email:        "maria@example.com",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}

	// Test successful login
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	_, token, err := authService.Login("maria@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Validate the token structure
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID, claims["sub"])
	assert.Equal(t, string(user.Role), claims["role"])
	mockRepo.AssertExpectations(t)

	// Wrong password and unknown email both yield the same error.
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	_, _, err = authService.Login("maria@example.com", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	mockRepo.On("GetByEmail", "nobody@example.com").Return(nil, notFoundErr("user")).Once()
	_, _, err = authService.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, nil, testJWTSecret)

	// Valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-123",
		"role": "USER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims["sub"])

	// Garbage token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)

	// Expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)

	// Wrong signing secret
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	foreignString, _ := foreign.SignedString([]byte("someone_elses_secret"))
	_, err = authService.ValidateToken(foreignString)
	assert.Error(t, err)
}

func TestAuthService_UserFromToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil, "test_jwt_secret")

	user := &models.User{ID: "user-123", Email: "maria@example.com", Role: models.RoleUser}
	token, err := authService.IssueSession(user)
	require.NoError(t, err)

	mockRepo.On("GetByID", "user-123").Return(user, nil).Once()
	got := authService.UserFromToken(token)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	// A valid token for a since-deleted account resolves to anonymous.
	mockRepo.On("GetByID", "user-123").Return(nil, notFoundErr("user")).Once()
	assert.Nil(t, authService.UserFromToken(token))

	assert.Nil(t, authService.UserFromToken("garbage"))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_UpdateUser_LastAdminGuard(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil, "test_jwt_secret")

	roleUser := models.RoleUser
	admin := &models.User{ID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}

	// Demoting the only admin is rejected.
	mockRepo.On("GetByID", "admin-1").Return(admin, nil).Once()
	mockRepo.On("CountByRole", models.RoleAdmin).Return(int64(1), nil).Once()
	_, err := authService.UpdateUser("admin-1", "admin-1", services.UserUpdateInput{Role: &roleUser})
	assert.ErrorIs(t, err, services.ErrLastAdmin)
	mockRepo.AssertExpectations(t)

	// With a second admin present the same demotion goes through.
	mockRepo.On("GetByID", "admin-1").Return(admin, nil).Once()
	mockRepo.On("CountByRole", models.RoleAdmin).Return(int64(2), nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil).Once()
	updated, err := authService.UpdateUser("admin-2", "admin-1", services.UserUpdateInput{Role: &roleUser})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, updated.Role)
	mockRepo.AssertExpectations(t)

	// Promotions never consult the admin count.
	roleAdmin := models.RoleAdmin
	customer := &models.User{ID: "user-9", Email: "c@example.com", Role: models.RoleUser}
	mockRepo.On("GetByID", "user-9").Return(customer, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil).Once()
	updated, err = authService.UpdateUser("admin-1", "user-9", services.UserUpdateInput{Role: &roleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	mockRepo.AssertExpectations(t)

	// Unknown target
	mockRepo.On("GetByID", "ghost").Return(nil, notFoundErr("user")).Once()
	_, err = authService.UpdateUser("admin-1", "ghost", services.UserUpdateInput{Role: &roleUser})
	assert.ErrorIs(t, err, services.ErrUserNotFound)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil, "test_jwt_secret")

	// Bootstraps when no admin exists.
	mockRepo.On("CountByRole", models.RoleAdmin).Return(int64(0), nil).Once()
	mockRepo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleAdmin && u.Email == "admin@example.com"
	})).Return(nil).Once()
	require.NoError(t, authService.EnsureAdmin("Admin@Example.com", "secret123"))
	mockRepo.AssertExpectations(t)

	// No-op when an admin already exists.
	mockRepo.On("CountByRole", models.RoleAdmin).Return(int64(1), nil).Once()
	require.NoError(t, authService.EnsureAdmin("admin@example.com", "secret123"))
	mockRepo.AssertExpectations(t)

	// No-op without credentials.
	mockRepo.On("CountByRole", models.RoleAdmin).Return(int64(0), nil).Once()
	require.NoError(t, authService.EnsureAdmin("", ""))
	mockRepo.AssertExpectations(t)
}
