package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"virs-challenge/backend/config"
	"virs-challenge/backend/internal/dto"
	"virs-challenge/backend/internal/model"
	"virs-challenge/backend/internal/repository"
	"virs-challenge/backend/pkg/accesscode"
	pkgerrors "virs-challenge/backend/pkg/errors"
)

// ── 学期模块业务错误 ──
//
// 五类基础错误对应 HTTP 400/404/409/409/403，
// 细分错误以 %w 包装基础错误，Handler 可按需区分

var (
	ErrSemesterInvalidArgument = errors.New("学期参数不合法")
	ErrSemesterNotFound        = errors.New("学期不存在")
	ErrSemesterConflict        = errors.New("学期冲突")
	ErrSemesterInvalidState    = errors.New("学期状态不允许该操作")
	ErrSemesterForbidden       = errors.New("无权加入该学期")
)

var (
	ErrSemesterNameInvalid        = fmt.Errorf("%w: 名称长度须为 1-100 个字符", ErrSemesterInvalidArgument)
	ErrSemesterDateInvalid        = fmt.Errorf("%w: 结束时间必须晚于开始时间", ErrSemesterInvalidArgument)
	ErrSemesterActiveExists       = fmt.Errorf("%w: 已存在进行中的学期", ErrSemesterConflict)
	ErrSemesterCodeExhausted      = fmt.Errorf("%w: 无法分配唯一访问码", ErrSemesterConflict)
	ErrSemesterAlreadyEnded       = fmt.Errorf("%w: 学期已结束", ErrSemesterInvalidState)
	ErrSemesterNotActive          = fmt.Errorf("%w: 学期未在进行中", ErrSemesterInvalidState)
	ErrSemesterAccessCodeMismatch = fmt.Errorf("%w: 访问码错误", ErrSemesterForbidden)
)

const semesterNameMaxLen = 100

// SemesterService 学期业务接口
type SemesterService interface {
	Create(ctx context.Context, req *dto.CreateSemesterRequest) (*model.Semester, error)
	GetActive(ctx context.Context) (*model.Semester, error)
	GetByID(ctx context.Context, id uint64) (*model.Semester, error)
	End(ctx context.Context, id uint64) (*model.Semester, error)
	Join(ctx context.Context, id uint64, accessCode string) (*model.Semester, error)
	Update(ctx context.Context, id uint64, req *dto.UpdateSemesterRequest) (*model.Semester, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	List(ctx context.Context, skip, limit int) ([]model.Semester, error)
}

type semesterService struct {
	repo   *repository.Repository
	cfg    config.SemesterConfig
	logger *zap.Logger

	now          func() time.Time
	generateCode func(length int) (string, error)
}

// NewSemesterService 创建 SemesterService 实例
func NewSemesterService(cfg config.SemesterConfig, repo *repository.Repository, logger *zap.Logger) SemesterService {
	return &semesterService{
		repo:         repo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
		generateCode: accesscode.Generate,
	}
}

// ────────────────────── Create ──────────────────────

func (s *semesterService) Create(ctx context.Context, req *dto.CreateSemesterRequest) (*model.Semester, error) {
	if err := validateSemesterName(req.Name); err != nil {
		return nil, err
	}
	startDate := model.AsStored(req.StartDate)
	endDate := model.AsStored(req.EndDate)
	if !endDate.After(startDate) {
		return nil, ErrSemesterDateInvalid
	}

	// 先查后插并非原子操作，并发创建由部分唯一索引在 INSERT 时兜底
	if _, err := s.repo.Semester.GetActive(ctx); err == nil {
		return nil, ErrSemesterActiveExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询进行中学期失败", zap.Error(err))
		return nil, err
	}

	now := model.StoreNow(s.now())
	for attempt := 1; attempt <= s.cfg.AccessCodeMaxAttempts; attempt++ {
		code, err := s.generateCode(s.cfg.AccessCodeLength)
		if err != nil {
			s.logger.Error("生成访问码失败", zap.Error(err))
			return nil, err
		}

		exists, err := s.repo.Semester.ExistsByAccessCode(ctx, code)
		if err != nil {
			s.logger.Error("检查访问码失败", zap.Error(err))
			return nil, err
		}
		if exists {
			s.logger.Debug("访问码已存在，重新生成", zap.Int("attempt", attempt))
			continue
		}

		semester := &model.Semester{
			Name:       req.Name,
			AccessCode: code,
			StartDate:  startDate,
			EndDate:    endDate,
			IsActive:   true,
			AutoClear:  req.AutoClear,
			CreatedAt:  now,
		}
		err = s.repo.Semester.Create(ctx, semester)
		switch {
		case err == nil:
			s.logger.Info("学期已创建", zap.Uint64("id", semester.ID), zap.String("name", semester.Name))
			return semester, nil
		case errors.Is(err, pkgerrors.ErrDuplicateAccessCode):
			// 检查与插入之间被其他请求占用
			s.logger.Debug("插入时访问码冲突，重新生成", zap.Int("attempt", attempt))
			continue
		case errors.Is(err, pkgerrors.ErrActiveSemesterExists):
			return nil, ErrSemesterActiveExists
		default:
			s.logger.Error("创建学期失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Warn("访问码重试次数耗尽", zap.Int("max_attempts", s.cfg.AccessCodeMaxAttempts))
	return nil, ErrSemesterCodeExhausted
}

// ────────────────────── GetActive ──────────────────────

func (s *semesterService) GetActive(ctx context.Context) (*model.Semester, error) {
	semester, err := s.repo.Semester.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询进行中学期失败", zap.Error(err))
		return nil, err
	}
	return normalizeSemester(semester), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *semesterService) GetByID(ctx context.Context, id uint64) (*model.Semester, error) {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return normalizeSemester(semester), nil
}

// ────────────────────── End ──────────────────────

func (s *semesterService) End(ctx context.Context, id uint64) (*model.Semester, error) {
	semester, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !semester.IsActive {
		return nil, ErrSemesterAlreadyEnded
	}

	now := model.StoreNow(s.now())

	// 结束学期与清空留言板在同一事务内完成
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Semester.MarkEnded(ctx, id, now); err != nil {
		rollback()
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			// 读取之后被并发请求结束
			return nil, ErrSemesterAlreadyEnded
		}
		s.logger.Error("结束学期失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	if semester.AutoClear {
		cleared, err := txRepo.Message.DeleteAll(ctx)
		if err != nil {
			rollback()
			s.logger.Error("清空留言板失败", zap.Uint64("id", id), zap.Error(err))
			return nil, err
		}
		s.logger.Info("学期结束，留言板已清空", zap.Uint64("id", id), zap.Int64("cleared", cleared))
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	semester.IsActive = false
	semester.EndedAt = &now
	semester.UpdatedAt = &now
	s.logger.Info("学期已结束", zap.Uint64("id", id))
	return semester, nil
}

// ────────────────────── Join ──────────────────────

// Join 校验顺序：存在 → 访问码 → 进行中
func (s *semesterService) Join(ctx context.Context, id uint64, accessCode string) (*model.Semester, error) {
	semester, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(accessCode))
	if subtle.ConstantTimeCompare([]byte(code), []byte(semester.AccessCode)) != 1 {
		return nil, ErrSemesterAccessCodeMismatch
	}
	if !semester.IsActive {
		return nil, ErrSemesterNotActive
	}
	return semester, nil
}

// ────────────────────── Update ──────────────────────

func (s *semesterService) Update(ctx context.Context, id uint64, req *dto.UpdateSemesterRequest) (*model.Semester, error) {
	semester, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		if err := validateSemesterName(*req.Name); err != nil {
			return nil, err
		}
		semester.Name = *req.Name
		fields["name"] = semester.Name
	}
	if req.StartDate != nil {
		semester.StartDate = model.AsStored(*req.StartDate)
		fields["start_date"] = semester.StartDate
	}
	if req.EndDate != nil {
		semester.EndDate = model.AsStored(*req.EndDate)
		fields["end_date"] = semester.EndDate
	}
	if req.AutoClear != nil {
		semester.AutoClear = *req.AutoClear
		fields["auto_clear"] = semester.AutoClear
	}
	if len(fields) == 0 {
		return semester, nil
	}
	if !semester.EndDate.After(semester.StartDate) {
		return nil, ErrSemesterDateInvalid
	}

	now := model.StoreNow(s.now())
	fields["updated_at"] = now

	if err := s.repo.Semester.Update(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("更新学期失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	semester.UpdatedAt = &now
	return semester, nil
}

// ────────────────────── Delete ──────────────────────

func (s *semesterService) Delete(ctx context.Context, id uint64) (bool, error) {
	if err := s.repo.Semester.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrSemesterNotFound
		}
		s.logger.Error("删除学期失败", zap.Uint64("id", id), zap.Error(err))
		return false, err
	}
	s.logger.Info("学期已删除", zap.Uint64("id", id))
	return true, nil
}

// ────────────────────── List ──────────────────────

func (s *semesterService) List(ctx context.Context, skip, limit int) ([]model.Semester, error) {
	page := dto.OffsetRequest{Skip: skip, Limit: limit}
	offset, size := page.Normalize(s.cfg.ListMaxLimit)

	semesters, err := s.repo.Semester.List(ctx, offset, size)
	if err != nil {
		s.logger.Error("列出学期失败", zap.Error(err))
		return nil, err
	}
	for i := range semesters {
		normalizeSemester(&semesters[i])
	}
	return semesters, nil
}

// ── 内部辅助方法 ──

func validateSemesterName(name string) error {
	if strings.TrimSpace(name) == "" || utf8.RuneCountInString(name) > semesterNameMaxLen {
		return ErrSemesterNameInvalid
	}
	return nil
}

// normalizeSemester 统一时间字段为 UTC
func normalizeSemester(s *model.Semester) *model.Semester {
	s.StartDate = model.AsUTC(s.StartDate)
	s.EndDate = model.AsUTC(s.EndDate)
	s.CreatedAt = model.AsUTC(s.CreatedAt)
	s.UpdatedAt = model.AsUTCPtr(s.UpdatedAt)
	s.EndedAt = model.AsUTCPtr(s.EndedAt)
	return s
}
