package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"formflow_backend/internal/model"
	"formflow_backend/internal/repository"
	"formflow_backend/internal/util"
	"formflow_backend/pkg/logger"
	"formflow_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// exportBatchSize 导出时每趟从库里取多少条，控制单次内存占用
const exportBatchSize = 200

type SubmissionService struct {
	Repo   *repository.FormSubmissionRepository
	Schema *SchemaService
}

func NewSubmissionService(repo *repository.FormSubmissionRepository, schema *SchemaService) *SubmissionService {
	return &SubmissionService{Repo: repo, Schema: schema}
}

// BuildWindow 把请求里的日期串换算成过滤窗口。date_from 含当天零点，
// date_to 含整天（换算成次日零点的排除上界）。解析失败的串不设边界。
func (s *SubmissionService) BuildWindow(pageID uint, dateFrom, dateTo string) repository.SubmissionWindow {
	w := repository.SubmissionWindow{PageID: pageID}
	w.From = util.ParseFilterDate(dateFrom)
	if to := util.ParseFilterDate(dateTo); to != nil {
		end := to.Add(24 * time.Hour)
		w.To = &end
	}
	return w
}

// SubmissionRow 列表或导出中的一行：提交时间加上按模式顺序排好的单元格
type SubmissionRow struct {
	ID         uint      `json:"id"`
	SubmitTime time.Time `json:"submitTime"`
	Cells      []string  `json:"cells"`
}

// SubmissionListing 分页视图的渲染数据
type SubmissionListing struct {
	Headings   []string        `json:"headings"`
	Rows       []SubmissionRow `json:"rows"`
	Pagination util.Pagination `json:"pagination"`
}

// List 返回窗口内按提交时间升序的一页提交及分页元数据。
// 页码越界钳到最近的有效页；空结果集是第 1 页共 1 页、零行。
func (s *SubmissionService) List(w repository.SubmissionWindow, pageParam string) (*SubmissionListing, error) {
	total, err := s.Repo.Count(w)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + util.SubmissionsPerPage - 1) / util.SubmissionsPerPage)
	if totalPages < 1 {
		totalPages = 1
	}

	current := util.NormalizePageNumber(pageParam)
	if current > totalPages {
		current = totalPages
	}

	submissions, err := s.Repo.FindWindow(w, (current-1)*util.SubmissionsPerPage, util.SubmissionsPerPage)
	if err != nil {
		return nil, err
	}

	schema, err := s.Schema.SchemaFor(w.PageID)
	if err != nil {
		return nil, err
	}

	headings := make([]string, 0, len(schema)+1)
	headings = append(headings, "Submission date")
	for _, f := range schema {
		headings = append(headings, f.Label)
	}

	return &SubmissionListing{
		Headings: headings,
		Rows:     projectRows(submissions, schema),
		Pagination: util.Pagination{
			CurrentPage: current,
			TotalPages:  totalPages,
			TotalCount:  total,
		},
	}, nil
}

// ExportCSV 把窗口内全部提交（不分页，顺序与列表一致）流式写成 CSV。
// 表头为 Submission date 加当前模式的标签原文；记录以 CRLF 结尾；
// 单条答案数据损坏只污染该行，不中断导出。
func (s *SubmissionService) ExportCSV(w repository.SubmissionWindow, out io.Writer) error {
	schema, err := s.Schema.SchemaFor(w.PageID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(out)
	writer.UseCRLF = true

	header := make([]string, 0, len(schema)+1)
	header = append(header, "Submission date")
	for _, f := range schema {
		header = append(header, f.Label)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	err = s.Repo.ForEachWindow(w, exportBatchSize, func(batch []model.FormSubmission) error {
		for _, sub := range batch {
			record := make([]string, 0, len(schema)+1)
			record = append(record, sub.SubmitTime.UTC().Format(util.SubmitTimeFormat))
			record = append(record, projectCells(&sub, schema)...)
			if err := writer.Write(record); err != nil {
				return err
			}
			monitoring.ExportedSubmissions.Inc()
		}
		writer.Flush()
		return writer.Error()
	})
	if err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

// Delete 删除同时属于指定页面的一条提交。归属其他页面或已删除的 id
// 一律报未找到，绝不跨页删除。
func (s *SubmissionService) Delete(pageID, submissionID uint) error {
	deleted, err := s.Repo.DeleteByIDAndPage(submissionID, pageID)
	if err != nil {
		return err
	}
	if !deleted {
		return util.ErrSubmissionNotFound
	}
	logger.Log.Info("form submission deleted",
		zap.Uint("pageID", pageID),
		zap.Uint("submissionID", submissionID),
	)
	return nil
}

// FindForPage 取确认视图要展示的那条提交，校验页面归属
func (s *SubmissionService) FindForPage(pageID, submissionID uint) (*model.FormSubmission, error) {
	sub, err := s.Repo.FindByID(submissionID)
	if err != nil {
		return nil, err
	}
	if sub.PageID != pageID {
		return nil, util.ErrSubmissionNotFound
	}
	return sub, nil
}

func projectRows(submissions []model.FormSubmission, schema []SchemaField) []SubmissionRow {
	rows := make([]SubmissionRow, len(submissions))
	for i, sub := range submissions {
		rows[i] = SubmissionRow{
			ID:         sub.ID,
			SubmitTime: sub.SubmitTime,
			Cells:      projectCells(&sub, schema),
		}
	}
	return rows
}

// projectCells 把一条提交按模式顺序投影成单元格。缺失的键、JSON null
// 和空选择集都投影为缺失占位符；显式空字符串保持为空。
func projectCells(sub *model.FormSubmission, schema []SchemaField) []string {
	cells := make([]string, len(schema))

	var answers map[string]interface{}
	if err := json.Unmarshal(sub.FormData, &answers); err != nil {
		logger.Log.Warn("unreadable form data blob",
			zap.Uint("submissionID", sub.ID),
			zap.Uint("pageID", sub.PageID),
			zap.Error(err),
		)
		for i := range cells {
			cells[i] = util.ValueUnreadable
		}
		return cells
	}

	for i, f := range schema {
		value, ok := answers[f.Identifier]
		if !ok {
			cells[i] = util.ValueMissing
			continue
		}
		cells[i] = renderAnswer(value)
	}
	return cells
}

// renderAnswer 把一个答案值变成单个展示串。多选值用 ", " 连接
func renderAnswer(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return util.ValueMissing
	case string:
		return v
	case []interface{}:
		if len(v) == 0 {
			return util.ValueMissing
		}
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = renderAnswer(item)
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		if len(v) == 0 {
			return util.ValueMissing
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return util.ValueUnreadable
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}
