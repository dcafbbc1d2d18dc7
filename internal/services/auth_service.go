package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret}
}

// RegisterUser creates a user on first successful sign-up. The very first
// account becomes the platform admin.
func (s *AuthService) RegisterUser(ctx context.Context, email, password, displayName, role string) (*models.User, error) {
	var existing models.User
	result := s.db.WithContext(ctx).Where("email = ?", email).First(&existing)
	if result.Error == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if role != models.RoleSeller {
		role = models.RoleBuyer
	}
	var userCount int64
	s.db.WithContext(ctx).Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		role = models.RoleAdmin
	}

	user := &models.User{
		ID:          uuid.New().String(),
		Email:       email,
		DisplayName: displayName,
		Password:    string(hashedPassword),
		Role:        role,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// LoginUser checks the credentials and issues a signed token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.jwtSecret, user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, &user, nil
}
