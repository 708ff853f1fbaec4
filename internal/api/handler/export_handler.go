package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"virs-challenge/backend/internal/service"
	"virs-challenge/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSemesters 导出学期列表
// GET /api/semesters/export
func (h *ExportHandler) ExportSemesters(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportSemesters(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeAttachment(c, filename, contentTypeXLSX, buf.Bytes())
}

// SemesterCalendar 导出学期日历
// GET /api/semesters/:id/calendar
func (h *ExportHandler) SemesterCalendar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.SemesterCalendar(c.Request.Context(), id)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeAttachment(c, filename, contentTypeICS, buf.Bytes())
}

// writeAttachment 设置下载响应头并写入文件内容
func writeAttachment(c *gin.Context, filename, contentType string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 14001, "学期不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
