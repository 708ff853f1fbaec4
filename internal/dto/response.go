package dto

import "time"

// ── 分页请求 ──

// MaxListLimit 列表接口单页上限
const MaxListLimit = 100

// OffsetRequest 通用偏移分页参数（skip/limit）
type OffsetRequest struct {
	Skip  int `form:"skip"`
	Limit int `form:"limit"`
}

// Normalize 返回规范化后的 skip/limit
// limit 为 0 时取 maxLimit，超过 maxLimit 时截断
func (p *OffsetRequest) Normalize(maxLimit int) (skip, limit int) {
	skip = p.Skip
	if skip < 0 {
		skip = 0
	}
	limit = p.Limit
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}

// ── 时间格式化 ──

// FormatTime 统一输出 UTC RFC3339（纳秒精度）
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatTimePtr FormatTime 的可空版本
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}
