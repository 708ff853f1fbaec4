package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"virs-challenge/backend/internal/model"
	pkgerrors "virs-challenge/backend/pkg/errors"
)

// StreakRepository 连续打卡数据访问接口
type StreakRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.Streak, error)
	Create(ctx context.Context, streak *model.Streak) error
	CompareAndIncrement(ctx context.Context, id uint64, observed *time.Time, now time.Time) error
}

type streakRepo struct {
	db *gorm.DB
}

// NewStreakRepo 创建 StreakRepository 实例
func NewStreakRepo(db *gorm.DB) StreakRepository {
	return &streakRepo{db: db}
}

func (r *streakRepo) GetByUserID(ctx context.Context, userID string) (*model.Streak, error) {
	var streak model.Streak
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&streak).Error
	if err != nil {
		return nil, err
	}
	return &streak, nil
}

// Create 插入打卡记录；同一用户并发创建时返回 ErrDuplicateStreak
func (r *streakRepo) Create(ctx context.Context, streak *model.Streak) error {
	return translateUniqueViolation(r.db.WithContext(ctx).Create(streak).Error)
}

// CompareAndIncrement count+1 并写入 now，前提是 last_updated 仍等于调用方读到的值
// 未命中（已被并发请求抢先更新）返回 ErrOptimisticLock
func (r *streakRepo) CompareAndIncrement(ctx context.Context, id uint64, observed *time.Time, now time.Time) error {
	q := r.db.WithContext(ctx).Model(&model.Streak{})
	if observed == nil {
		q = q.Where("id = ? AND last_updated IS NULL", id)
	} else {
		q = q.Where("id = ? AND last_updated = ?", id, *observed)
	}

	result := q.Updates(map[string]interface{}{
		"count":        gorm.Expr("count + 1"),
		"last_updated": now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
