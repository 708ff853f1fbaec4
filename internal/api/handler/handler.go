package handler

import "virs-challenge/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Semester *SemesterHandler
	Streak   *StreakHandler
	Message  *MessageHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Semester: NewSemesterHandler(svc.Semester),
		Streak:   NewStreakHandler(svc.Streak),
		Message:  NewMessageHandler(svc.Message),
		Export:   NewExportHandler(svc.Export),
	}
}
