package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"virs-challenge/backend/internal/model"
	"virs-challenge/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

const (
	exportSheetName = "学期列表"
	calendarProdID  = "-//virs-challenge//semester calendar//ZH"
	calendarDomain  = "virs-challenge"
)

// ExportService 导出业务接口
//
// 导出内容以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportSemesters 导出全部学期为 Excel
	ExportSemesters(ctx context.Context) (*bytes.Buffer, string, error)
	// SemesterCalendar 导出单个学期为 iCalendar (.ics)
	SemesterCalendar(ctx context.Context, id uint64) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger

	now func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportSemesters 导出学期列表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "学期列表"，首行为标题
//   - 列：ID | 名称 | 访问码 | 开始时间 | 结束时间 | 状态 | 自动清空 | 创建时间 | 结束于
//   - 时间统一为 UTC RFC3339

func (s *exportService) ExportSemesters(ctx context.Context) (*bytes.Buffer, string, error) {
	semesters, err := s.repo.Semester.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询学期列表失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "名称", "访问码", "开始时间", "结束时间", "状态", "自动清空", "创建时间", "结束于"}
	widths := []float64{8, 24, 12, 22, 22, 10, 10, 22, 22}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(exportSheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	for i, h := range headers {
		f.SetCellValue(exportSheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(exportSheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	// 数据行
	for i := range semesters {
		sem := &semesters[i]
		row := i + 2
		status := "已结束"
		if sem.IsActive {
			status = "进行中"
		}
		autoClear := "否"
		if sem.AutoClear {
			autoClear = "是"
		}
		endedAt := "-"
		if sem.EndedAt != nil {
			endedAt = formatExportTime(*sem.EndedAt)
		}

		values := []interface{}{
			sem.ID,
			sem.Name,
			sem.AccessCode,
			formatExportTime(sem.StartDate),
			formatExportTime(sem.EndDate),
			status,
			autoClear,
			formatExportTime(sem.CreatedAt),
			endedAt,
		}
		for col, v := range values {
			f.SetCellValue(exportSheetName, cell(colName(col), row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("学期列表_%s.xlsx", s.now().UTC().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// SemesterCalendar 导出学期为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每个学期对应一个 VEVENT，UID 固定为 semester-{id}@virs-challenge，
// 重复导入日历客户端时覆盖而非新增；已结束学期标记为 CANCELLED

func (s *exportService) SemesterCalendar(ctx context.Context, id uint64) (*bytes.Buffer, string, error) {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Uint64("id", id), zap.Error(err))
		return nil, "", err
	}

	cal := buildSemesterCalendar(semester, s.now().UTC())

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		s.logger.Error("写入 iCalendar 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("semester_%d.ics", semester.ID)
	return buf, filename, nil
}

// ── 辅助函数 ──

func buildSemesterCalendar(semester *model.Semester, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProdID)

	event := cal.AddEvent(fmt.Sprintf("semester-%d@%s", semester.ID, calendarDomain))
	event.SetDtStampTime(stamp)
	event.SetCreatedTime(model.AsUTC(semester.CreatedAt))
	event.SetStartAt(model.AsUTC(semester.StartDate))
	event.SetEndAt(model.AsUTC(semester.EndDate))
	event.SetSummary(semester.Name)
	if semester.UpdatedAt != nil {
		event.SetModifiedAt(model.AsUTC(*semester.UpdatedAt))
	}
	if semester.IsActive {
		event.SetStatus(ics.ObjectStatusConfirmed)
	} else {
		event.SetStatus(ics.ObjectStatusCancelled)
	}
	return cal
}

func formatExportTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
