package dto

import (
	"time"

	"virs-challenge/backend/internal/model"
)

// ── 学期模块 DTO ──

// CreateSemesterRequest 创建学期请求
type CreateSemesterRequest struct {
	Name      string    `json:"name"       binding:"required,min=1,max=100"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date"   binding:"required"`
	AutoClear bool      `json:"auto_clear"`
}

// UpdateSemesterRequest 更新学期请求（部分更新：未提供的字段保持不变）
type UpdateSemesterRequest struct {
	Name      *string    `json:"name"       binding:"omitempty,min=1,max=100"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	AutoClear *bool      `json:"auto_clear"`
}

// JoinSemesterRequest 加入学期请求
type JoinSemesterRequest struct {
	AccessCode string `json:"access_code" binding:"required,min=1,max=20"`
}

// SemesterResponse 学期信息响应
type SemesterResponse struct {
	ID         uint64  `json:"id"`
	Name       string  `json:"name"`
	AccessCode string  `json:"access_code,omitempty"` // 仅管理员可见
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	IsActive   bool    `json:"is_active"`
	AutoClear  bool    `json:"auto_clear"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  *string `json:"updated_at"`
	EndedAt    *string `json:"ended_at"`
}

// DeleteSemesterResponse 删除学期响应
type DeleteSemesterResponse struct {
	Deleted bool `json:"deleted"`
}

// NewSemesterResponse 将学期模型转换为响应；showCode 为 false 时隐藏访问码
func NewSemesterResponse(s *model.Semester, showCode bool) SemesterResponse {
	resp := SemesterResponse{
		ID:        s.ID,
		Name:      s.Name,
		StartDate: FormatTime(s.StartDate),
		EndDate:   FormatTime(s.EndDate),
		IsActive:  s.IsActive,
		AutoClear: s.AutoClear,
		CreatedAt: FormatTime(s.CreatedAt),
		UpdatedAt: FormatTimePtr(s.UpdatedAt),
		EndedAt:   FormatTimePtr(s.EndedAt),
	}
	if showCode {
		resp.AccessCode = s.AccessCode
	}
	return resp
}
