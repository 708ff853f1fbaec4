package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"virs-challenge/backend/internal/model"
	pkgerrors "virs-challenge/backend/pkg/errors"
)

// SemesterRepository 学期数据访问接口
type SemesterRepository interface {
	Create(ctx context.Context, semester *model.Semester) error
	GetByID(ctx context.Context, id uint64) (*model.Semester, error)
	GetActive(ctx context.Context) (*model.Semester, error)
	ExistsByAccessCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]model.Semester, error)
	ListAll(ctx context.Context) ([]model.Semester, error)
	Update(ctx context.Context, id uint64, fields map[string]interface{}) error
	MarkEnded(ctx context.Context, id uint64, now time.Time) error
	Delete(ctx context.Context, id uint64) error
}

// semesterRepo SemesterRepository 的 GORM 实现
type semesterRepo struct {
	db *gorm.DB
}

// NewSemesterRepo 创建 SemesterRepository 实例
func NewSemesterRepo(db *gorm.DB) SemesterRepository {
	return &semesterRepo{db: db}
}

// Create 插入学期；访问码或活动学期冲突翻译为对应哨兵错误
func (r *semesterRepo) Create(ctx context.Context, semester *model.Semester) error {
	return translateUniqueViolation(r.db.WithContext(ctx).Create(semester).Error)
}

func (r *semesterRepo) GetByID(ctx context.Context, id uint64) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) GetActive(ctx context.Context) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) ExistsByAccessCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Semester{}).
		Where("access_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// List 按 id 升序分页，保证翻页稳定
func (r *semesterRepo) List(ctx context.Context, offset, limit int) ([]model.Semester, error) {
	var semesters []model.Semester
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&semesters).Error
	return semesters, err
}

func (r *semesterRepo) ListAll(ctx context.Context) ([]model.Semester, error) {
	var semesters []model.Semester
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&semesters).Error
	return semesters, err
}

// Update 按字段部分更新；目标行不存在时返回 gorm.ErrRecordNotFound
func (r *semesterRepo) Update(ctx context.Context, id uint64, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Semester{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkEnded 条件更新 is_active → false
// 仅当该行仍为活动状态时命中；未命中返回 ErrOptimisticLock
func (r *semesterRepo) MarkEnded(ctx context.Context, id uint64, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Semester{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"ended_at":   now,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

// Delete 硬删除；目标行不存在时返回 gorm.ErrRecordNotFound
func (r *semesterRepo) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Semester{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
