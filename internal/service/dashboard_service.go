package service

import (
	"context"
	"encoding/json"
	"time"

	"brass-inventory/internal/repository"
	"brass-inventory/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const dashboardStatsKey = "brass:dashboard:stats"

type DashboardService interface {
	GetStockMovement(days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	ledgerRepo repository.LedgerRepository
	reportRepo repository.ReportRepository
	cache      *redis.Client // optional
	cacheTTL   time.Duration
}

func NewDashboardService(lRepo repository.LedgerRepository, rRepo repository.ReportRepository, cache *redis.Client) DashboardService {
	return &dashboardService{
		ledgerRepo: lRepo,
		reportRepo: rRepo,
		cache:      cache,
		cacheTTL:   30 * time.Second,
	}
}

func (s *dashboardService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, 0, -days)

	return s.ledgerRepo.GetStockMovement(startDate, endDate)
}

// GetDashboardStats serves from Redis when it holds a fresh copy. Cache failures fall
// through to the database.
func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, dashboardStatsKey).Bytes()
		if err == nil {
			var cached repository.DashboardStats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			logger.LogError("service", "GetDashboardStats", "read cache", nil, err)
		}
	}

	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	stats, err := s.reportRepo.GetDashboardStats(dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, dashboardStatsKey, raw, s.cacheTTL).Err(); err != nil {
				logger.LogError("service", "GetDashboardStats", "write cache", nil, err)
			}
		}
	}
	return stats, nil
}
