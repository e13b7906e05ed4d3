package repository

import (
	"formflow_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// SubmissionWindow 一次列表/导出请求的不可变过滤条件。
// From 为包含下界，To 为排除上界（调用方已把"到某天"换算成次日零点）。
type SubmissionWindow struct {
	PageID uint
	From   *time.Time
	To     *time.Time
}

// FormSubmissionRepository 处理表单提交记录的数据库操作
type FormSubmissionRepository struct {
	DB *gorm.DB
}

func NewFormSubmissionRepository(db *gorm.DB) *FormSubmissionRepository {
	return &FormSubmissionRepository{DB: db}
}

func (r *FormSubmissionRepository) Create(submission *model.FormSubmission) error {
	return r.DB.Create(submission).Error
}

func (r *FormSubmissionRepository) FindByID(id uint) (*model.FormSubmission, error) {
	var submission model.FormSubmission
	err := r.DB.First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *FormSubmissionRepository) windowQuery(w SubmissionWindow) *gorm.DB {
	query := r.DB.Model(&model.FormSubmission{}).Where("page_id = ?", w.PageID)
	if w.From != nil {
		query = query.Where("submit_time >= ?", *w.From)
	}
	if w.To != nil {
		query = query.Where("submit_time < ?", *w.To)
	}
	return query
}

// Count 时间窗内的提交总数，与行查询相互独立
func (r *FormSubmissionRepository) Count(w SubmissionWindow) (int64, error) {
	var count int64
	err := r.windowQuery(w).Count(&count).Error
	return count, err
}

// FindWindow 按 submit_time 升序（id 升序断平）返回窗口内的一段提交
func (r *FormSubmissionRepository) FindWindow(w SubmissionWindow, offset, limit int) ([]model.FormSubmission, error) {
	var submissions []model.FormSubmission
	err := r.windowQuery(w).
		Order("submit_time ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&submissions).Error
	return submissions, err
}

// ForEachWindow 按固定批量单趟遍历窗口内的全部提交，供导出流式消费。
// 排序与 FindWindow 完全一致，保证分页视图与导出看到同一顺序。
func (r *FormSubmissionRepository) ForEachWindow(w SubmissionWindow, batchSize int, fn func(batch []model.FormSubmission) error) error {
	offset := 0
	for {
		batch, err := r.FindWindow(w, offset, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
		offset += batchSize
	}
}

// DeleteByIDAndPage 删除同时命中提交 id 和所属页面的那一条记录。
// 返回是否真的删掉了：归属其他页面或已删除的 id 都算未命中。
func (r *FormSubmissionRepository) DeleteByIDAndPage(id, pageID uint) (bool, error) {
	tx := r.DB.Where("page_id = ?", pageID).Delete(&model.FormSubmission{}, id)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// CountByPage 页面全部提交数（提交面板上的计数用）
func (r *FormSubmissionRepository) CountByPage(pageID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.FormSubmission{}).Where("page_id = ?", pageID).Count(&count).Error
	return count, err
}
