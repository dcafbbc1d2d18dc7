package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/internal/notifier"
)

type UserService struct {
	db  *gorm.DB
	rdb *redis.Client
	bus *notifier.Bus
}

func NewUserService(db *gorm.DB, rdb *redis.Client, bus *notifier.Bus) *UserService {
	return &UserService{db: db, rdb: rdb, bus: bus}
}

func userCacheKey(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

func (s *UserService) FindUserByID(ctx context.Context, userID string) (models.User, error) {
	// Try cache
	if s.rdb != nil {
		val, err := s.rdb.Get(ctx, userCacheKey(userID)).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(val), &user); err == nil {
				return user, nil
			}
		}
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}

	// Set cache
	if s.rdb != nil {
		if data, err := json.Marshal(user); err == nil {
			s.rdb.Set(ctx, userCacheKey(userID), data, time.Hour)
		}
	}

	return user, nil
}

// FindUsers retrieves a paginated list of users.
func (s *UserService) FindUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	offset := (page - 1) * limit

	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := s.db.WithContext(ctx).Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// UpdateUser applies an admin edit to profile fields with optimistic
// locking. Balance and the bookkeeping counters are owned by the wallet
// and contract services and cannot be set here.
func (s *UserService) UpdateUser(ctx context.Context, userID string, updates map[string]interface{}) (*models.User, error) {
	for _, owned := range []string{"deposit_balance", "active_contracts", "total_invested", "pending_installments"} {
		delete(updates, owned)
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Password handling
	if password, ok := updates["password"].(string); ok && password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		updates["password"] = string(hashedPassword)
	}

	// Optimistic lock check: the version predicate makes the update atomic
	currentVersion := user.Version
	updates["version"] = currentVersion + 1

	result := tx.Model(&user).Where("version = ?", currentVersion).Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrOptimisticLock
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// Invalidate cache
	if s.rdb != nil {
		s.rdb.Del(ctx, userCacheKey(userID))
	}

	if s.bus != nil {
		s.bus.Publish(notifier.Event{Kind: notifier.KindUser, Op: notifier.OpUpdated, ID: userID})
	}

	// Fetch updated user to return full object
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// InvalidateCache drops the cached copy of a user. Called by write paths
// that bypass this service.
func (s *UserService) InvalidateCache(ctx context.Context, userID string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, userCacheKey(userID))
	}
}
