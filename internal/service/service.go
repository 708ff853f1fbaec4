package service

import (
	"go.uber.org/zap"

	"virs-challenge/backend/config"
	"virs-challenge/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Semester SemesterService
	Streak   StreakService
	Message  MessageService
	Export   ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	logger *zap.Logger,
) *Service {
	return &Service{
		Semester: NewSemesterService(cfg.Semester, repo, logger),
		Streak:   NewStreakService(cfg.Streak, repo, logger),
		Message:  NewMessageService(repo, logger),
		Export:   NewExportService(repo, logger),
	}
}
