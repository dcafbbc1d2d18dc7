package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/pkg/logger"
)

const (
	statsCacheKey = "stats:global"
	statsCacheTTL = 5 * time.Minute
)

// StatsService serves the dashboard aggregations. The platform snapshot is
// refreshed by whichever operation mutated the underlying records; reads go
// redis -> snapshot row -> full recompute.
type StatsService struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewStatsService(db *gorm.DB, rdb *redis.Client) *StatsService {
	return &StatsService{db: db, rdb: rdb}
}

// PlatformStats returns the platform-wide aggregation.
func (s *StatsService) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	if s.rdb != nil {
		val, err := s.rdb.Get(ctx, statsCacheKey).Result()
		if err == nil {
			var stats models.PlatformStats
			if err := json.Unmarshal([]byte(val), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	var stats models.PlatformStats
	err := s.db.WithContext(ctx).First(&stats, "id = ?", "global").Error
	if err == nil {
		s.cache(ctx, &stats)
		return &stats, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.Refresh(ctx)
}

// Refresh recomputes the snapshot from scratch, persists it and mirrors it
// to redis.
func (s *StatsService) Refresh(ctx context.Context) (*models.PlatformStats, error) {
	var stats *models.PlatformStats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stats, err = refreshPlatformStats(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cache(ctx, stats)
	return stats, nil
}

// UserStats aggregates one user's dashboard figures from their contracts
// and balance. Missing data reads as zero; the fold never fails on
// inconsistent records.
func (s *StatsService) UserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var contracts []models.Contract
	if err := s.db.WithContext(ctx).Where("buyer_id = ?", userID).Find(&contracts).Error; err != nil {
		return nil, err
	}

	stats := &models.UserStats{
		TotalDeposits: user.DepositBalance,
		TotalInvested: decimal.Zero,
	}
	for _, c := range contracts {
		stats.TotalInvested = stats.TotalInvested.Add(c.AmountPaid)
		if c.Status == models.ContractStatusActive {
			stats.ActiveContracts++
		}
		if c.Status != models.ContractStatusCompleted {
			stats.PendingPayments += int64(c.UnpaidInstallments())
		}
	}
	return stats, nil
}

// cache mirrors a fresh snapshot to redis. Cache faults are logged, never
// surfaced.
func (s *StatsService) cache(ctx context.Context, stats *models.PlatformStats) {
	if s.rdb == nil || stats == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, statsCacheKey, data, statsCacheTTL).Err(); err != nil && logger.Log != nil {
		logger.Log.Warn("failed to cache platform stats: " + err.Error())
	}
}
