package model

// FieldType 表单字段类型
type FieldType string

const (
	FieldSingleLine FieldType = "singleline"
	FieldMultiLine  FieldType = "multiline"
	FieldEmail      FieldType = "email"
	FieldNumber     FieldType = "number"
	FieldDropdown   FieldType = "dropdown"
	FieldRadio      FieldType = "radio"
	FieldCheckboxes FieldType = "checkboxes"
	FieldDate       FieldType = "date"
	FieldFile       FieldType = "file"
)

// swagger:model FormPage
type FormPage struct {
	BaseModel
	Title   string `gorm:"size:255;not null" json:"title"`
	Slug    string `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	OwnerID uint   `gorm:"index" json:"ownerId"`
	// Live 不带列默认值：GORM 会把带 default 标签的零值字段从 INSERT
	// 里剔除，false 永远写不进去。创建路径上总是显式赋值。
	Live        bool        `json:"live"`
	ThanksText  string      `gorm:"type:text" json:"thanksText"`
	ToAddress   string      `gorm:"size:255" json:"toAddress"`
	SubjectLine string      `gorm:"size:255" json:"subjectLine"`
	Fields      []FormField `gorm:"foreignKey:PageID" json:"fields,omitempty"`
}

func (FormPage) TableName() string {
	return "form_pages"
}

// FormField 表单页的一个字段定义。Identifier 在创建时由 Label 派生，
// 同一页面内唯一；历史提交里的键以提交时的 Identifier 为准。
// swagger:model FormField
type FormField struct {
	BaseModel
	PageID     uint      `gorm:"index;not null" json:"pageId"`
	Identifier string    `gorm:"size:255;not null" json:"identifier"`
	Label      string    `gorm:"size:255;not null" json:"label"`
	FieldType  FieldType `gorm:"size:20;not null" json:"fieldType"`
	Required   bool      `gorm:"default:false" json:"required"`
	Choices    string    `gorm:"type:text" json:"choices"` // 逗号分隔的可选项
	HelpText   string    `gorm:"size:255" json:"helpText"`
	SortOrder  int       `gorm:"default:0" json:"sortOrder"`
}

func (FormField) TableName() string {
	return "form_fields"
}
