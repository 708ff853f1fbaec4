package repository

import (
	"context"

	"gorm.io/gorm"

	"virs-challenge/backend/internal/model"
)

// MessageRepository 留言板数据访问接口（留言、回复、点赞）
type MessageRepository interface {
	List(ctx context.Context, offset, limit int) ([]model.Message, error)
	GetByID(ctx context.Context, id uint64) (*model.Message, error)
	Create(ctx context.Context, message *model.Message) error
	UpdateContent(ctx context.Context, id uint64, content string) error
	Delete(ctx context.Context, id uint64) error
	DeleteAll(ctx context.Context) (int64, error)

	CreateReply(ctx context.Context, reply *model.Reply) error
	DeleteReply(ctx context.Context, messageID, replyID uint64) error

	AddLike(ctx context.Context, like *model.Like) error
	RemoveLike(ctx context.Context, messageID uint64, userID string) error
	CountLikes(ctx context.Context, messageID uint64) (int64, error)
}

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo 创建 MessageRepository 实例
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

// withRelations 预加载回复（按时间正序）与点赞
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC, id ASC")
		}).
		Preload("Likes")
}

// List 按发布时间倒序分页
func (r *messageRepo) List(ctx context.Context, offset, limit int) ([]model.Message, error) {
	var messages []model.Message
	err := withRelations(r.db.WithContext(ctx)).
		Order("timestamp DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *messageRepo) GetByID(ctx context.Context, id uint64) (*model.Message, error) {
	var message model.Message
	err := withRelations(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepo) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Omit("Replies", "Likes").Create(message).Error
}

func (r *messageRepo) UpdateContent(ctx context.Context, id uint64, content string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("id = ?", id).
		Update("content", content)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除留言，回复与点赞由外键级联删除
func (r *messageRepo) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Message{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAll 清空留言板（学期结束且开启 auto_clear 时调用）
func (r *messageRepo) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Message{})
	return result.RowsAffected, result.Error
}

// ── Reply ──

func (r *messageRepo) CreateReply(ctx context.Context, reply *model.Reply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

// DeleteReply 删除指定留言下的回复；回复不属于该留言时视为不存在
func (r *messageRepo) DeleteReply(ctx context.Context, messageID, replyID uint64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND message_id = ?", replyID, messageID).
		Delete(&model.Reply{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ── Like ──

// AddLike 插入点赞；同一用户重复点赞返回 ErrDuplicateLike
func (r *messageRepo) AddLike(ctx context.Context, like *model.Like) error {
	return translateUniqueViolation(r.db.WithContext(ctx).Create(like).Error)
}

// RemoveLike 删除该用户的点赞，未点赞时为空操作
func (r *messageRepo) RemoveLike(ctx context.Context, messageID uint64, userID string) error {
	return r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		Delete(&model.Like{}).Error
}

func (r *messageRepo) CountLikes(ctx context.Context, messageID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	return count, err
}
