package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"

	// SubmitTimeFormat 导出时间戳的固定表示，UTC 偏移显式保留
	SubmitTimeFormat = "2006-01-02 15:04:05-07:00"
)

const (
	// SubmissionsPerPage 提交列表每页条数
	SubmissionsPerPage = 20
	// FormPagesPerPage 表单页索引每页条数
	FormPagesPerPage = 20
)

const (
	// ValueMissing 提交中缺失的键、空选择集和 JSON null 的占位符
	ValueMissing = "None"
	// ValueUnreadable 答案数据无法反序列化时的单元格标记
	ValueUnreadable = "#ERR"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)
