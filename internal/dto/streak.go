package dto

import "virs-challenge/backend/internal/model"

// ── 连续打卡模块 DTO ──

// StreakResponse 打卡信息响应
type StreakResponse struct {
	UserID      string  `json:"user_id"`
	Count       int     `json:"count"`
	LastUpdated *string `json:"last_updated"`
}

// NewStreakResponse 将打卡模型转换为响应
func NewStreakResponse(s *model.Streak) StreakResponse {
	return StreakResponse{
		UserID:      s.UserID,
		Count:       s.Count,
		LastUpdated: FormatTimePtr(s.LastUpdated),
	}
}
