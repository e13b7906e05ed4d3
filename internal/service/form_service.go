package service

import (
	"encoding/json"

	"formflow_backend/internal/model"
	"formflow_backend/internal/repository"
	"formflow_backend/internal/util"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// FormService 表单页与字段定义的编辑入口，以及新提交的落库。
// 页面树与版本语义不在这一层，它只维护供提交列表消费的最小结构。
type FormService struct {
	PageRepo       *repository.FormPageRepository
	SubmissionRepo *repository.FormSubmissionRepository
	Schema         *SchemaService
}

func NewFormService(pageRepo *repository.FormPageRepository, submissionRepo *repository.FormSubmissionRepository, schema *SchemaService) *FormService {
	return &FormService{
		PageRepo:       pageRepo,
		SubmissionRepo: submissionRepo,
		Schema:         schema,
	}
}

type FormPageRequest struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug"`
	ThanksText  string `json:"thanksText"`
	ToAddress   string `json:"toAddress"`
	SubjectLine string `json:"subjectLine"`
	Live        *bool  `json:"live"`
}

func (s *FormService) CreatePage(ownerID uint, req FormPageRequest) (*model.FormPage, error) {
	pageSlug := req.Slug
	if pageSlug == "" {
		pageSlug = slug.Make(req.Title)
	}

	page := &model.FormPage{
		Title:       req.Title,
		Slug:        pageSlug,
		OwnerID:     ownerID,
		Live:        true,
		ThanksText:  req.ThanksText,
		ToAddress:   req.ToAddress,
		SubjectLine: req.SubjectLine,
	}
	if req.Live != nil {
		page.Live = *req.Live
	}

	if err := s.PageRepo.Create(page); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *FormService) GetPage(id uint) (*model.FormPage, error) {
	page, err := s.PageRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrPageNotFound
	}
	return page, err
}

func (s *FormService) ListPages(ownerID *uint, pageParam string) ([]model.FormPage, util.Pagination, error) {
	// 先拿总数把页码钳到有效范围，规则与提交列表一致
	total, err := s.PageRepo.CountPages(ownerID)
	if err != nil {
		return nil, util.Pagination{}, err
	}

	totalPages := int((total + util.FormPagesPerPage - 1) / util.FormPagesPerPage)
	if totalPages < 1 {
		totalPages = 1
	}
	current := util.NormalizePageNumber(pageParam)
	if current > totalPages {
		current = totalPages
	}

	pages, err := s.PageRepo.List(ownerID, (current-1)*util.FormPagesPerPage, util.FormPagesPerPage)
	if err != nil {
		return nil, util.Pagination{}, err
	}

	return pages, util.Pagination{
		CurrentPage: current,
		TotalPages:  totalPages,
		TotalCount:  total,
	}, nil
}

type FormFieldRequest struct {
	Label     string          `json:"label" binding:"required"`
	FieldType model.FieldType `json:"fieldType" binding:"required"`
	Required  bool            `json:"required"`
	Choices   string          `json:"choices"`
	HelpText  string          `json:"helpText"`
	SortOrder int             `json:"sortOrder"`
}

// AddField 在页面上新增字段。Identifier 由标签一次性派生（含非拉丁
// 标签的转写），之后保持稳定；同页重复标签被拒绝。
func (s *FormService) AddField(pageID uint, req FormFieldRequest) (*model.FormField, error) {
	if _, err := s.GetPage(pageID); err != nil {
		return nil, err
	}

	dup, err := s.PageRepo.CountFieldsByLabel(pageID, req.Label, 0)
	if err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, util.ErrDuplicateLabel
	}

	field := &model.FormField{
		PageID:     pageID,
		Identifier: slug.Make(req.Label),
		Label:      req.Label,
		FieldType:  req.FieldType,
		Required:   req.Required,
		Choices:    req.Choices,
		HelpText:   req.HelpText,
		SortOrder:  req.SortOrder,
	}
	if err := s.PageRepo.CreateField(field); err != nil {
		return nil, err
	}

	s.Schema.Invalidate(pageID)
	return field, nil
}

// UpdateField 更新字段定义。Identifier 创建后不变，历史提交的键才对得上
func (s *FormService) UpdateField(fieldID uint, req FormFieldRequest) (*model.FormField, error) {
	field, err := s.PageRepo.FindFieldByID(fieldID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrFieldNotFound
	}
	if err != nil {
		return nil, err
	}

	dup, err := s.PageRepo.CountFieldsByLabel(field.PageID, req.Label, field.ID)
	if err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, util.ErrDuplicateLabel
	}

	field.Label = req.Label
	field.FieldType = req.FieldType
	field.Required = req.Required
	field.Choices = req.Choices
	field.HelpText = req.HelpText
	field.SortOrder = req.SortOrder
	if err := s.PageRepo.UpdateField(field); err != nil {
		return nil, err
	}

	s.Schema.Invalidate(field.PageID)
	return field, nil
}

func (s *FormService) DeleteField(fieldID uint) error {
	field, err := s.PageRepo.FindFieldByID(fieldID)
	if err == gorm.ErrRecordNotFound {
		return util.ErrFieldNotFound
	}
	if err != nil {
		return err
	}

	if err := s.PageRepo.DeleteField(field.ID); err != nil {
		return err
	}
	s.Schema.Invalidate(field.PageID)
	return nil
}

// CreateSubmission 落库一条新提交。只保留当前模式声明过的键，
// 不做渲染或校验（公共提交端的职责边界）。
func (s *FormService) CreateSubmission(pageID uint, answers map[string]interface{}) (*model.FormSubmission, error) {
	page, err := s.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	if !page.Live {
		return nil, util.ErrPageNotLive
	}

	schema, err := s.Schema.SchemaFor(pageID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(schema))
	for _, f := range schema {
		known[f.Identifier] = true
	}
	kept := make(map[string]interface{}, len(answers))
	for k, v := range answers {
		if known[k] {
			kept[k] = v
		}
	}

	blob, err := json.Marshal(kept)
	if err != nil {
		return nil, err
	}

	submission := &model.FormSubmission{
		PageID:   pageID,
		FormData: blob,
	}
	if err := s.SubmissionRepo.Create(submission); err != nil {
		return nil, err
	}
	return submission, nil
}
