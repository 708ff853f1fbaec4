package dto

import "virs-challenge/backend/internal/model"

// ── 留言板模块 DTO ──

// CreateMessageRequest 发布留言请求
type CreateMessageRequest struct {
	Author     string `json:"author"     binding:"required,max=100"`
	Department string `json:"department" binding:"max=100"`
	Avatar     string `json:"avatar"     binding:"max=255"`
	Content    string `json:"content"    binding:"required,max=5000"`
	Color      string `json:"color"      binding:"max=32"`
}

// UpdateMessageRequest 修改留言请求（仅内容可改）
type UpdateMessageRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// CreateReplyRequest 回复请求
type CreateReplyRequest struct {
	Author     string `json:"author"     binding:"required,max=100"`
	Department string `json:"department" binding:"max=100"`
	Avatar     string `json:"avatar"     binding:"max=255"`
	Content    string `json:"content"    binding:"required,max=5000"`
	Color      string `json:"color"      binding:"max=32"`
}

// ReplyResponse 回复响应
type ReplyResponse struct {
	ID         uint64 `json:"id"`
	MessageID  uint64 `json:"message_id"`
	Author     string `json:"author"`
	Department string `json:"department"`
	Avatar     string `json:"avatar"`
	Content    string `json:"content"`
	Color      string `json:"color"`
	Timestamp  string `json:"timestamp"`
}

// MessageResponse 留言响应（含点赞数与回复）
type MessageResponse struct {
	ID         uint64          `json:"id"`
	Author     string          `json:"author"`
	Department string          `json:"department"`
	Avatar     string          `json:"avatar"`
	Content    string          `json:"content"`
	Color      string          `json:"color"`
	Timestamp  string          `json:"timestamp"`
	Likes      int             `json:"likes"`
	Liked      bool            `json:"liked"`
	Replies    []ReplyResponse `json:"replies"`
}

// LikeResponse 点赞/取消点赞响应
type LikeResponse struct {
	Likes int64 `json:"likes"`
	Liked bool  `json:"liked"`
}

// NewReplyResponse 将回复模型转换为响应
func NewReplyResponse(r *model.Reply) ReplyResponse {
	return ReplyResponse{
		ID:         r.ID,
		MessageID:  r.MessageID,
		Author:     r.Author,
		Department: r.Department,
		Avatar:     r.Avatar,
		Content:    r.Content,
		Color:      r.Color,
		Timestamp:  FormatTime(r.Timestamp),
	}
}

// NewMessageResponse 将留言模型转换为响应，liked 以 viewerID 计算
func NewMessageResponse(m *model.Message, viewerID string) MessageResponse {
	replies := make([]ReplyResponse, 0, len(m.Replies))
	for i := range m.Replies {
		replies = append(replies, NewReplyResponse(&m.Replies[i]))
	}
	return MessageResponse{
		ID:         m.ID,
		Author:     m.Author,
		Department: m.Department,
		Avatar:     m.Avatar,
		Content:    m.Content,
		Color:      m.Color,
		Timestamp:  FormatTime(m.Timestamp),
		Likes:      len(m.Likes),
		Liked:      m.LikedBy(viewerID),
		Replies:    replies,
	}
}
