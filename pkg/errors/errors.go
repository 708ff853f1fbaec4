package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：条件更新未命中任何行（记录已被其他操作修改）
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ── 唯一约束冲突（由 Repository 根据约束名翻译） ──

var (
	// ErrDuplicateAccessCode 访问码与已有学期重复
	ErrDuplicateAccessCode = errors.New("访问码已存在")
	// ErrActiveSemesterExists 已存在进行中的学期（部分唯一索引拦截）
	ErrActiveSemesterExists = errors.New("已存在进行中的学期")
	// ErrDuplicateStreak 该用户的打卡记录已存在
	ErrDuplicateStreak = errors.New("打卡记录已存在")
	// ErrDuplicateLike 该用户已点赞
	ErrDuplicateLike = errors.New("已点赞")
)
