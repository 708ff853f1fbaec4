package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"virs-challenge/backend/internal/dto"
	"virs-challenge/backend/internal/service"
	"virs-challenge/backend/pkg/response"
)

// StreakHandler 连续打卡 HTTP 处理器
type StreakHandler struct {
	streakSvc service.StreakService
}

// NewStreakHandler 创建 StreakHandler
func NewStreakHandler(streakSvc service.StreakService) *StreakHandler {
	return &StreakHandler{streakSvc: streakSvc}
}

// GetStreak 获取当前用户的打卡记录（不存在时创建）
// GET /api/user/streak
func (h *StreakHandler) GetStreak(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	streak, err := h.streakSvc.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		h.handleStreakError(c, err)
		return
	}

	response.OK(c, dto.NewStreakResponse(streak))
}

// IncrementStreak 打卡；24 小时内重复调用返回当前状态
// PATCH /api/user/streak
func (h *StreakHandler) IncrementStreak(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	streak, err := h.streakSvc.Increment(c.Request.Context(), userID)
	if err != nil {
		h.handleStreakError(c, err)
		return
	}

	response.OK(c, dto.NewStreakResponse(streak))
}

func (h *StreakHandler) handleStreakError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStreakInvalidUser):
		response.BadRequest(c, 15001, "用户标识无效")
	default:
		response.InternalError(c)
	}
}
