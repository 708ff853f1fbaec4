package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"virs-challenge/backend/internal/dto"
	"virs-challenge/backend/internal/model"
	"virs-challenge/backend/internal/repository"
	pkgerrors "virs-challenge/backend/pkg/errors"
)

// ── 留言板模块业务错误 ──

var (
	ErrMessageNotFound     = errors.New("留言不存在")
	ErrReplyNotFound       = errors.New("回复不存在")
	ErrMessageContentEmpty = errors.New("内容不能为空")
)

// MessageService 留言板业务接口
type MessageService interface {
	List(ctx context.Context, skip, limit int, viewerID string) ([]dto.MessageResponse, error)
	Create(ctx context.Context, req *dto.CreateMessageRequest, viewerID string) (*dto.MessageResponse, error)
	Get(ctx context.Context, id uint64, viewerID string) (*dto.MessageResponse, error)
	Update(ctx context.Context, id uint64, content string, viewerID string) (*dto.MessageResponse, error)
	Delete(ctx context.Context, id uint64) error

	CreateReply(ctx context.Context, messageID uint64, req *dto.CreateReplyRequest) (*dto.ReplyResponse, error)
	DeleteReply(ctx context.Context, messageID, replyID uint64) error

	Like(ctx context.Context, messageID uint64, userID string) (*dto.LikeResponse, error)
	Unlike(ctx context.Context, messageID uint64, userID string) (*dto.LikeResponse, error)
}

type messageService struct {
	repo   *repository.Repository
	logger *zap.Logger

	now func() time.Time
}

// NewMessageService 创建 MessageService 实例
func NewMessageService(repo *repository.Repository, logger *zap.Logger) MessageService {
	return &messageService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── List ──────────────────────

func (s *messageService) List(ctx context.Context, skip, limit int, viewerID string) ([]dto.MessageResponse, error) {
	page := dto.OffsetRequest{Skip: skip, Limit: limit}
	offset, size := page.Normalize(dto.MaxListLimit)

	messages, err := s.repo.Message.List(ctx, offset, size)
	if err != nil {
		s.logger.Error("列出留言失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		result = append(result, dto.NewMessageResponse(&messages[i], viewerID))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *messageService) Create(ctx context.Context, req *dto.CreateMessageRequest, viewerID string) (*dto.MessageResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrMessageContentEmpty
	}

	message := &model.Message{
		Author:     req.Author,
		Department: req.Department,
		Avatar:     req.Avatar,
		Content:    req.Content,
		Color:      req.Color,
		Timestamp:  model.StoreNow(s.now()),
	}
	if err := s.repo.Message.Create(ctx, message); err != nil {
		s.logger.Error("发布留言失败", zap.Error(err))
		return nil, err
	}

	resp := dto.NewMessageResponse(message, viewerID)
	return &resp, nil
}

// ────────────────────── Get ──────────────────────

func (s *messageService) Get(ctx context.Context, id uint64, viewerID string) (*dto.MessageResponse, error) {
	message, err := s.getMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewMessageResponse(message, viewerID)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *messageService) Update(ctx context.Context, id uint64, content string, viewerID string) (*dto.MessageResponse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrMessageContentEmpty
	}

	if err := s.repo.Message.UpdateContent(ctx, id, content); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		s.logger.Error("修改留言失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return s.Get(ctx, id, viewerID)
}

// ────────────────────── Delete ──────────────────────

func (s *messageService) Delete(ctx context.Context, id uint64) error {
	if err := s.repo.Message.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		s.logger.Error("删除留言失败", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Reply ──────────────────────

func (s *messageService) CreateReply(ctx context.Context, messageID uint64, req *dto.CreateReplyRequest) (*dto.ReplyResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrMessageContentEmpty
	}
	if _, err := s.getMessage(ctx, messageID); err != nil {
		return nil, err
	}

	reply := &model.Reply{
		MessageID:  messageID,
		Author:     req.Author,
		Department: req.Department,
		Avatar:     req.Avatar,
		Content:    req.Content,
		Color:      req.Color,
		Timestamp:  model.StoreNow(s.now()),
	}
	if err := s.repo.Message.CreateReply(ctx, reply); err != nil {
		s.logger.Error("发布回复失败", zap.Uint64("message_id", messageID), zap.Error(err))
		return nil, err
	}

	resp := dto.NewReplyResponse(reply)
	return &resp, nil
}

func (s *messageService) DeleteReply(ctx context.Context, messageID, replyID uint64) error {
	if err := s.repo.Message.DeleteReply(ctx, messageID, replyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReplyNotFound
		}
		s.logger.Error("删除回复失败", zap.Uint64("message_id", messageID), zap.Uint64("reply_id", replyID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Like ──────────────────────

// Like 每个用户对同一留言至多点赞一次，重复点赞为空操作
func (s *messageService) Like(ctx context.Context, messageID uint64, userID string) (*dto.LikeResponse, error) {
	if _, err := s.getMessage(ctx, messageID); err != nil {
		return nil, err
	}

	like := &model.Like{
		MessageID: messageID,
		UserID:    userID,
		Timestamp: model.StoreNow(s.now()),
	}
	if err := s.repo.Message.AddLike(ctx, like); err != nil && !errors.Is(err, pkgerrors.ErrDuplicateLike) {
		s.logger.Error("点赞失败", zap.Uint64("message_id", messageID), zap.Error(err))
		return nil, err
	}
	return s.likeState(ctx, messageID, true)
}

func (s *messageService) Unlike(ctx context.Context, messageID uint64, userID string) (*dto.LikeResponse, error) {
	if _, err := s.getMessage(ctx, messageID); err != nil {
		return nil, err
	}

	if err := s.repo.Message.RemoveLike(ctx, messageID, userID); err != nil {
		s.logger.Error("取消点赞失败", zap.Uint64("message_id", messageID), zap.Error(err))
		return nil, err
	}
	return s.likeState(ctx, messageID, false)
}

// ── 内部辅助方法 ──

func (s *messageService) getMessage(ctx context.Context, id uint64) (*model.Message, error) {
	message, err := s.repo.Message.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		s.logger.Error("查询留言失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return message, nil
}

func (s *messageService) likeState(ctx context.Context, messageID uint64, liked bool) (*dto.LikeResponse, error) {
	count, err := s.repo.Message.CountLikes(ctx, messageID)
	if err != nil {
		s.logger.Error("统计点赞数失败", zap.Uint64("message_id", messageID), zap.Error(err))
		return nil, err
	}
	return &dto.LikeResponse{Likes: count, Liked: liked}, nil
}
