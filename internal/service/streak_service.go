package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"virs-challenge/backend/config"
	"virs-challenge/backend/internal/model"
	"virs-challenge/backend/internal/repository"
	pkgerrors "virs-challenge/backend/pkg/errors"
)

// ── 连续打卡模块业务错误 ──

var ErrStreakInvalidUser = errors.New("用户标识不能为空")

// StreakService 连续打卡业务接口
//
// 规则：
//   - 每个用户一行记录，首次访问时惰性创建
//   - 距 last_updated 不足一个窗口（默认 24h）时 Increment 为空操作，不视为错误
//   - 并发 Increment 通过对 last_updated 的 CAS 条件更新保证至多 +1
type StreakService interface {
	GetOrCreate(ctx context.Context, userID string) (*model.Streak, error)
	Increment(ctx context.Context, userID string) (*model.Streak, error)
}

type streakService struct {
	repo   *repository.Repository
	window time.Duration
	logger *zap.Logger

	now func() time.Time
}

// NewStreakService 创建 StreakService 实例
func NewStreakService(cfg config.StreakConfig, repo *repository.Repository, logger *zap.Logger) StreakService {
	return &streakService{
		repo:   repo,
		window: cfg.Window,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── GetOrCreate ──────────────────────

func (s *streakService) GetOrCreate(ctx context.Context, userID string) (*model.Streak, error) {
	if userID == "" {
		return nil, ErrStreakInvalidUser
	}

	streak, err := s.repo.Streak.GetByUserID(ctx, userID)
	if err == nil {
		return normalizeStreak(streak), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询打卡记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	streak = &model.Streak{
		UserID:    userID,
		Count:     0,
		CreatedAt: model.StoreNow(s.now()),
	}
	if err := s.repo.Streak.Create(ctx, streak); err != nil {
		if !errors.Is(err, pkgerrors.ErrDuplicateStreak) {
			s.logger.Error("创建打卡记录失败", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
		// 并发创建：以先写入的一行为准
		return s.reload(ctx, userID)
	}
	return streak, nil
}

// ────────────────────── Increment ──────────────────────

func (s *streakService) Increment(ctx context.Context, userID string) (*model.Streak, error) {
	streak, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := model.StoreNow(s.now())
	if streak.LastUpdated != nil && now.Sub(*streak.LastUpdated) < s.window {
		return streak, nil
	}

	err = s.repo.Streak.CompareAndIncrement(ctx, streak.ID, streak.LastUpdated, now)
	switch {
	case err == nil:
		streak.Count++
		streak.LastUpdated = &now
		s.logger.Debug("打卡次数 +1", zap.String("user_id", userID), zap.Int("count", streak.Count))
		return streak, nil
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		// 并发请求已完成本窗口的自增，返回最新状态
		return s.reload(ctx, userID)
	default:
		s.logger.Error("更新打卡记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
}

// ── 内部辅助方法 ──

func (s *streakService) reload(ctx context.Context, userID string) (*model.Streak, error) {
	streak, err := s.repo.Streak.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("重新读取打卡记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return normalizeStreak(streak), nil
}

func normalizeStreak(s *model.Streak) *model.Streak {
	s.LastUpdated = model.AsUTCPtr(s.LastUpdated)
	s.CreatedAt = model.AsUTC(s.CreatedAt)
	return s
}
