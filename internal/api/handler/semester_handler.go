package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"virs-challenge/backend/internal/dto"
	"virs-challenge/backend/internal/model"
	"virs-challenge/backend/internal/service"
	"virs-challenge/backend/pkg/response"
)

// SemesterHandler 学期模块 HTTP 处理器
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// GetActiveSemester 获取进行中的学期
// GET /api/semesters/active
func (h *SemesterHandler) GetActiveSemester(c *gin.Context) {
	semester, err := h.semesterSvc.GetActive(c.Request.Context())
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, dto.NewSemesterResponse(semester, isAdmin(c)))
}

// ListSemesters 获取学期列表（按 id 升序）
// GET /api/semesters?skip=0&limit=100
func (h *SemesterHandler) ListSemesters(c *gin.Context) {
	var req dto.OffsetRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	skip, limit := req.Normalize(dto.MaxListLimit)
	semesters, err := h.semesterSvc.List(c.Request.Context(), skip, limit)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	list := make([]dto.SemesterResponse, 0, len(semesters))
	for i := range semesters {
		list = append(list, dto.NewSemesterResponse(&semesters[i], true))
	}
	response.OKList(c, list, skip, limit)
}

// GetSemester 获取学期详情
// GET /api/semesters/:id
func (h *SemesterHandler) GetSemester(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	semester, err := h.semesterSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	h.respond(c, semester)
}

// CreateSemester 创建学期（自动成为进行中学期）
// POST /api/semesters
func (h *SemesterHandler) CreateSemester(c *gin.Context) {
	var req dto.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	semester, err := h.semesterSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.Created(c, dto.NewSemesterResponse(semester, true))
}

// UpdateSemester 部分更新学期
// PATCH /api/semesters/:id
func (h *SemesterHandler) UpdateSemester(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	semester, err := h.semesterSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	h.respond(c, semester)
}

// EndSemester 结束学期
// POST /api/semesters/:id/end
func (h *SemesterHandler) EndSemester(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	semester, err := h.semesterSvc.End(c.Request.Context(), id)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	h.respond(c, semester)
}

// JoinSemester 凭访问码加入学期
// POST /api/semesters/:id/join
func (h *SemesterHandler) JoinSemester(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.JoinSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	semester, err := h.semesterSvc.Join(c.Request.Context(), id, req.AccessCode)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	h.respond(c, semester)
}

// DeleteSemester 删除学期
// DELETE /api/semesters/:id
func (h *SemesterHandler) DeleteSemester(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	deleted, err := h.semesterSvc.Delete(c.Request.Context(), id)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, dto.DeleteSemesterResponse{Deleted: deleted})
}

// ── 内部辅助方法 ──

func (h *SemesterHandler) respond(c *gin.Context, semester *model.Semester) {
	response.OK(c, dto.NewSemesterResponse(semester, isAdmin(c)))
}

func (h *SemesterHandler) handleSemesterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 14001, "学期不存在")
	case errors.Is(err, service.ErrSemesterInvalidArgument):
		response.BadRequest(c, 14002, err.Error())
	case errors.Is(err, service.ErrSemesterConflict):
		response.Conflict(c, 14003, err.Error())
	case errors.Is(err, service.ErrSemesterInvalidState):
		response.Conflict(c, 14004, err.Error())
	case errors.Is(err, service.ErrSemesterForbidden):
		response.Forbidden(c, 14005, "访问码错误")
	default:
		response.InternalError(c)
	}
}
