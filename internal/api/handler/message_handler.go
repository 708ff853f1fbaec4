package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"virs-challenge/backend/internal/dto"
	"virs-challenge/backend/internal/service"
	"virs-challenge/backend/pkg/response"
)

// MessageHandler 留言板 HTTP 处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建 MessageHandler
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// ListMessages 留言列表（新→旧）
// GET /api/messages?skip=0&limit=100
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.OffsetRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	skip, limit := req.Normalize(dto.MaxListLimit)
	messages, err := h.messageSvc.List(c.Request.Context(), skip, limit, userID)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OKList(c, messages, skip, limit)
}

// CreateMessage 发布留言
// POST /api/messages
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	message, err := h.messageSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.Created(c, message)
}

// GetMessage 留言详情
// GET /api/messages/:id
func (h *MessageHandler) GetMessage(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	message, err := h.messageSvc.Get(c.Request.Context(), id, userID)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OK(c, message)
}

// UpdateMessage 修改留言内容
// PUT /api/messages/:id
func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	message, err := h.messageSvc.Update(c.Request.Context(), id, req.Content, userID)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OK(c, message)
}

// DeleteMessage 删除留言（级联删除回复与点赞）
// DELETE /api/messages/:id
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.messageSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OK(c, nil)
}

// CreateReply 回复留言
// POST /api/messages/:id/replies
func (h *MessageHandler) CreateReply(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	reply, err := h.messageSvc.CreateReply(c.Request.Context(), id, &req)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.Created(c, reply)
}

// DeleteReply 删除回复
// DELETE /api/messages/:id/replies/:reply_id
func (h *MessageHandler) DeleteReply(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	replyID, ok := parseIDParam(c, "reply_id")
	if !ok {
		return
	}

	if err := h.messageSvc.DeleteReply(c.Request.Context(), id, replyID); err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OK(c, nil)
}

// LikeMessage 点赞
// POST /api/messages/:id/like
func (h *MessageHandler) LikeMessage(c *gin.Context) {
	h.toggleLike(c, true)
}

// UnlikeMessage 取消点赞
// DELETE /api/messages/:id/like
func (h *MessageHandler) UnlikeMessage(c *gin.Context) {
	h.toggleLike(c, false)
}

func (h *MessageHandler) toggleLike(c *gin.Context, like bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var (
		state *dto.LikeResponse
		err   error
	)
	if like {
		state, err = h.messageSvc.Like(c.Request.Context(), id, userID)
	} else {
		state, err = h.messageSvc.Unlike(c.Request.Context(), id, userID)
	}
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OK(c, state)
}

func (h *MessageHandler) handleMessageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMessageNotFound):
		response.NotFound(c, 16001, "留言不存在")
	case errors.Is(err, service.ErrReplyNotFound):
		response.NotFound(c, 16002, "回复不存在")
	case errors.Is(err, service.ErrMessageContentEmpty):
		response.BadRequest(c, 16003, "内容不能为空")
	default:
		response.InternalError(c)
	}
}
