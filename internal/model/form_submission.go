package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// FormSubmission 一次表单填写记录。FormData 是提交时刻答案映射的序列化快照
// （identifier -> 字符串或字符串数组），创建后不再更新，只读或删除。
// swagger:model FormSubmission
type FormSubmission struct {
	BaseModel
	PageID     uint            `gorm:"index;not null" json:"pageId"`
	Page       *FormPage       `gorm:"foreignKey:PageID" json:"-"`
	SubmitTime time.Time       `gorm:"index" json:"submitTime"`
	FormData   json.RawMessage `gorm:"type:json" json:"formData"`
}

func (FormSubmission) TableName() string {
	return "form_submissions"
}

func (s *FormSubmission) BeforeCreate(tx *gorm.DB) (err error) {
	if s.SubmitTime.IsZero() {
		s.SubmitTime = time.Now().UTC()
	}
	return
}
