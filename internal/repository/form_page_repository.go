package repository

import (
	"formflow_backend/internal/model"

	"gorm.io/gorm"
)

// FormPageRepository 处理表单页及其字段定义的数据库操作
type FormPageRepository struct {
	DB *gorm.DB
}

func NewFormPageRepository(db *gorm.DB) *FormPageRepository {
	return &FormPageRepository{DB: db}
}

func (r *FormPageRepository) Create(page *model.FormPage) error {
	return r.DB.Create(page).Error
}

func (r *FormPageRepository) FindByID(id uint) (*model.FormPage, error) {
	var page model.FormPage
	err := r.DB.First(&page, id).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *FormPageRepository) FindBySlug(slug string) (*model.FormPage, error) {
	var page model.FormPage
	err := r.DB.Where("slug = ?", slug).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// CountPages 可见表单页总数。ownerID 非 nil 时限定该用户拥有的页面
// （编辑角色的可见范围），nil 表示不限（管理员）。
func (r *FormPageRepository) CountPages(ownerID *uint) (int64, error) {
	query := r.DB.Model(&model.FormPage{})
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}
	var total int64
	err := query.Count(&total).Error
	return total, err
}

// List 分页返回表单页，可见范围规则同 CountPages
func (r *FormPageRepository) List(ownerID *uint, offset, limit int) ([]model.FormPage, error) {
	query := r.DB.Model(&model.FormPage{})
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}
	var pages []model.FormPage
	err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&pages).Error
	return pages, err
}

// FieldsByPage 返回页面当前的字段定义，按 sort_order 再按创建顺序排列
func (r *FormPageRepository) FieldsByPage(pageID uint) ([]model.FormField, error) {
	var fields []model.FormField
	err := r.DB.Where("page_id = ?", pageID).
		Order("sort_order ASC, id ASC").
		Find(&fields).Error
	return fields, err
}

func (r *FormPageRepository) CreateField(field *model.FormField) error {
	return r.DB.Create(field).Error
}

func (r *FormPageRepository) FindFieldByID(id uint) (*model.FormField, error) {
	var field model.FormField
	err := r.DB.First(&field, id).Error
	if err != nil {
		return nil, err
	}
	return &field, nil
}

func (r *FormPageRepository) UpdateField(field *model.FormField) error {
	return r.DB.Save(field).Error
}

func (r *FormPageRepository) DeleteField(id uint) error {
	return r.DB.Delete(&model.FormField{}, id).Error
}

// CountFieldsByLabel 同页内按标签计数，excludeID 用于更新时排除自身
func (r *FormPageRepository) CountFieldsByLabel(pageID uint, label string, excludeID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.FormField{}).
		Where("page_id = ? AND label = ? AND id <> ?", pageID, label, excludeID).
		Count(&count).Error
	return count, err
}
