package util

import (
	"strconv"
	"time"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// filterDateLayouts 过滤日期支持的书写格式（本地化 月/日/年 及 ISO）
var filterDateLayouts = []string{"01/02/2006", "2006-01-02"}

// ParseFilterDate 解析日期过滤参数为当天 00:00:00 UTC。
// 无法解析的输入返回 nil，表示不应用该边界，而非错误。
func ParseFilterDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range filterDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

// NormalizePageNumber 规范化页码参数：缺失、非数字或非正数一律回到第 1 页。
// 越界钳制由分页引擎在得知总页数后完成。
func NormalizePageNumber(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
