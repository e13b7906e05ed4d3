package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"formflow_backend/internal/model"
	"formflow_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSubmissions(t *testing.T) {
	f := newFixture(t)
	f.addContactSubmissions(t)

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "", ""), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Submission date", "Your email", "Your message", "Your choices"}, listing.Headings)
	require.Len(t, listing.Rows, 2)
	assert.Equal(t, int64(2), listing.Pagination.TotalCount)
	assert.Equal(t, 1, listing.Pagination.CurrentPage)
	assert.Equal(t, 1, listing.Pagination.TotalPages)
}

func TestListFilteringDateFrom(t *testing.T) {
	f := newFixture(t)
	f.addContactSubmissions(t)

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "01/01/2014", ""), "")
	require.NoError(t, err)

	require.Len(t, listing.Rows, 1)
	assert.Equal(t, "new@example.com", listing.Rows[0].Cells[0])
}

func TestListFilteringDateTo(t *testing.T) {
	f := newFixture(t)
	f.addContactSubmissions(t)

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "", "12/31/2013"), "")
	require.NoError(t, err)

	require.Len(t, listing.Rows, 1)
	assert.Equal(t, "old@example.com", listing.Rows[0].Cells[0])
}

func TestListFilteringRange(t *testing.T) {
	f := newFixture(t)
	f.addContactSubmissions(t)

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "12/31/2013", "01/02/2014"), "")
	require.NoError(t, err)

	require.Len(t, listing.Rows, 1)
	assert.Equal(t, "new@example.com", listing.Rows[0].Cells[0])
}

func TestListFilteringMalformedDates(t *testing.T) {
	f := newFixture(t)
	f.addContactSubmissions(t)

	// 解析不了的日期不设边界，而不是报错
	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "gibberish", "also-not-a-date"), "")
	require.NoError(t, err)
	assert.Len(t, listing.Rows, 2)
}

func TestListOrdering(t *testing.T) {
	f := newFixture(t)
	// 倒序插入，结果必须仍按提交时间升序
	f.addSubmission(t, time.Date(2014, 1, 1, 12, 0, 0, 0, time.UTC), map[string]interface{}{
		"your-message": "second",
	})
	f.addSubmission(t, time.Date(2013, 1, 1, 12, 0, 0, 0, time.UTC), map[string]interface{}{
		"your-message": "first",
	})

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "", ""), "")
	require.NoError(t, err)

	require.Len(t, listing.Rows, 2)
	assert.Equal(t, "first", listing.Rows[0].Cells[1])
	assert.Equal(t, "second", listing.Rows[1].Cells[1])
	assert.True(t, listing.Rows[0].SubmitTime.Before(listing.Rows[1].SubmitTime))
}

func TestListOrderingTieBreak(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2014, 1, 1, 12, 0, 0, 0, time.UTC)
	first := f.addSubmission(t, at, map[string]interface{}{"your-message": "a"})
	second := f.addSubmission(t, at, map[string]interface{}{"your-message": "b"})

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "", ""), "")
	require.NoError(t, err)

	require.Len(t, listing.Rows, 2)
	assert.Equal(t, first.ID, listing.Rows[0].ID)
	assert.Equal(t, second.ID, listing.Rows[1].ID)
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	f.addBulkSubmissions(t, 100)

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "", ""), "2")
	require.NoError(t, err)

	assert.Equal(t, 2, listing.Pagination.CurrentPage)
	assert.Equal(t, 5, listing.Pagination.TotalPages)
	assert.Equal(t, int64(100), listing.Pagination.TotalCount)
	assert.Len(t, listing.Rows, util.SubmissionsPerPage)
	// 第二页从第 21 条开始
	assert.Equal(t, "bulk 20", listing.Rows[0].Cells[1])
}

func TestListPaginationInvalidPage(t *testing.T) {
	f := newFixture(t)
	f.addBulkSubmissions(t, 100)

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "", ""), "Hello world!")
	require.NoError(t, err)
	assert.Equal(t, 1, listing.Pagination.CurrentPage)
}

func TestListPaginationOutOfRange(t *testing.T) {
	f := newFixture(t)
	f.addBulkSubmissions(t, 100)

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "", ""), "99999")
	require.NoError(t, err)
	assert.Equal(t, listing.Pagination.TotalPages, listing.Pagination.CurrentPage)
	assert.Len(t, listing.Rows, util.SubmissionsPerPage)
}

func TestListEmptyResultSet(t *testing.T) {
	f := newFixture(t)

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "", ""), "")
	require.NoError(t, err)

	assert.Empty(t, listing.Rows)
	assert.Equal(t, 1, listing.Pagination.CurrentPage)
	assert.Equal(t, 1, listing.Pagination.TotalPages)
	assert.Equal(t, int64(0), listing.Pagination.TotalCount)
}

func TestProjectionMissingAndMultiValue(t *testing.T) {
	f := newFixture(t)
	f.addSubmission(t, time.Date(2014, 1, 1, 12, 0, 0, 0, time.UTC), map[string]interface{}{
		"your-email":   "",
		"your-choices": []string{"foo", "baz"},
	})
	f.addSubmission(t, time.Date(2014, 1, 2, 12, 0, 0, 0, time.UTC), map[string]interface{}{
		"your-email":   "a@example.com",
		"your-choices": []string{},
	})

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "", ""), "")
	require.NoError(t, err)
	require.Len(t, listing.Rows, 2)

	// 显式空串保持为空，缺键是 None，多选用 ", " 连接
	assert.Equal(t, "", listing.Rows[0].Cells[0])
	assert.Equal(t, util.ValueMissing, listing.Rows[0].Cells[1])
	assert.Equal(t, "foo, baz", listing.Rows[0].Cells[2])
	// 空选择集与缺键同样渲染为 None
	assert.Equal(t, util.ValueMissing, listing.Rows[1].Cells[2])
}

func TestProjectionRemovedFieldOmitted(t *testing.T) {
	f := newFixture(t)
	f.addSubmission(t, time.Date(2014, 1, 1, 12, 0, 0, 0, time.UTC), map[string]interface{}{
		"your-email":   "a@example.com",
		"your-message": "kept answer",
	})

	// 删掉 Your message 字段后，老提交里的这个键不再产生列
	var field model.FormField
	require.NoError(t, f.db.Where("identifier = ?", "your-message").First(&field).Error)
	require.NoError(t, f.forms.DeleteField(field.ID))

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "", ""), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Submission date", "Your email", "Your choices"}, listing.Headings)
	require.Len(t, listing.Rows, 1)
	assert.Len(t, listing.Rows[0].Cells, 2)
	assert.Equal(t, "a@example.com", listing.Rows[0].Cells[0])
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	f.addContactSubmissions(t)

	var buf bytes.Buffer
	require.NoError(t, f.submissions.ExportCSV(f.submissions.BuildWindow(f.page.ID, "", ""), &buf))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "Submission date,Your email,Your message,Your choices\r", lines[0])
	assert.Equal(t, "2013-01-01 12:00:00+00:00,old@example.com,this is a really old message,None\r", lines[1])
	assert.Equal(t, "2014-01-01 12:00:00+00:00,new@example.com,this is a fairly new message,None\r", lines[2])
}

func TestExportCSVDateFrom(t *testing.T) {
	f := newFixture(t)
	f.addContactSubmissions(t)

	var buf bytes.Buffer
	require.NoError(t, f.submissions.ExportCSV(f.submissions.BuildWindow(f.page.ID, "01/01/2014", ""), &buf))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "2014-01-01 12:00:00+00:00,new@example.com,this is a fairly new message,None\r", lines[1])
	// 表头 + 一条记录 + 末尾空串
	assert.Len(t, lines, 3)
}

func TestExportCSVDateTo(t *testing.T) {
	f := newFixture(t)
	f.addContactSubmissions(t)

	var buf bytes.Buffer
	require.NoError(t, f.submissions.ExportCSV(f.submissions.BuildWindow(f.page.ID, "", "12/31/2013"), &buf))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "2013-01-01 12:00:00+00:00,old@example.com,this is a really old message,None\r", lines[1])
	assert.Len(t, lines, 3)
}

func TestExportCSVUnicodeAnswer(t *testing.T) {
	f := newFixture(t)
	f.addSubmission(t, time.Date(2014, 1, 2, 12, 0, 0, 0, time.UTC), map[string]interface{}{
		"your-email":   "unicode@example.com",
		"your-message": "こんにちは、世界",
	})

	var buf bytes.Buffer
	require.NoError(t, f.submissions.ExportCSV(f.submissions.BuildWindow(f.page.ID, "01/02/2014", ""), &buf))

	lines := strings.Split(buf.String(), "\n")
	assert.Contains(t, lines[1], "こんにちは、世界")
}

func TestExportCSVUnicodeLabel(t *testing.T) {
	f := newFixture(t)

	label := "Выберите самую любимую IDE для разработке на Python"
	field, err := f.forms.AddField(f.page.ID, FormFieldRequest{
		Label:     label,
		FieldType: model.FieldRadio,
		Choices:   "PyCharm,vim,nano",
		SortOrder: 4,
	})
	require.NoError(t, err)

	f.addSubmission(t, time.Date(2014, 1, 2, 12, 0, 0, 0, time.UTC), map[string]interface{}{
		"your-email":     "unicode@example.com",
		"your-message":   "We don't need unicode here",
		field.Identifier: "vim",
	})

	var buf bytes.Buffer
	require.NoError(t, f.submissions.ExportCSV(f.submissions.BuildWindow(f.page.ID, "01/02/2014", ""), &buf))

	lines := strings.Split(buf.String(), "\n")
	// 标签按原文进 CSV 表头，不做转写
	assert.Contains(t, lines[0], label)
	assert.Contains(t, lines[1], "vim")
}

func TestExportCountMatchesListing(t *testing.T) {
	f := newFixture(t)
	f.addContactSubmissions(t)
	f.addBulkSubmissions(t, 100)

	window := f.submissions.BuildWindow(f.page.ID, "", "")

	listing, err := f.submissions.List(window, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.submissions.ExportCSV(window, &buf))

	records := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n")
	// 去掉表头后的记录数与分页视图的总数一致，没有丢行或重复
	assert.Equal(t, listing.Pagination.TotalCount, int64(len(records)-1))
}

func TestCorruptBlobDoesNotAbortBatch(t *testing.T) {
	f := newFixture(t)
	f.addContactSubmissions(t)

	broken := &model.FormSubmission{
		PageID:     f.page.ID,
		SubmitTime: time.Date(2013, 6, 1, 12, 0, 0, 0, time.UTC),
		FormData:   json.RawMessage(`{not valid json`),
	}
	require.NoError(t, f.subRepo.Create(broken))

	listing, err := f.submissions.List(f.submissions.BuildWindow(f.page.ID, "", ""), "")
	require.NoError(t, err)
	require.Len(t, listing.Rows, 3)

	// 坏行打上标记，其余行不受影响
	assert.Equal(t, []string{util.ValueUnreadable, util.ValueUnreadable, util.ValueUnreadable}, listing.Rows[1].Cells)
	assert.Equal(t, "old@example.com", listing.Rows[0].Cells[0])
	assert.Equal(t, "new@example.com", listing.Rows[2].Cells[0])

	var buf bytes.Buffer
	require.NoError(t, f.submissions.ExportCSV(f.submissions.BuildWindow(f.page.ID, "", ""), &buf))
	assert.Len(t, strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n"), 4)
}

func TestDeleteSubmission(t *testing.T) {
	f := newFixture(t)
	f.addContactSubmissions(t)
	sub := f.addSubmission(t, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), map[string]interface{}{})

	require.NoError(t, f.submissions.Delete(f.page.ID, sub.ID))

	count, err := f.subRepo.CountByPage(f.page.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// 幂等：第二次删除报未找到，不是致命错误
	err = f.submissions.Delete(f.page.ID, sub.ID)
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)
}

func TestDeleteSubmissionWrongPage(t *testing.T) {
	f := newFixture(t)
	sub := f.addSubmission(t, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), map[string]interface{}{})

	other, err := f.forms.CreatePage(1, FormPageRequest{Title: "Other form", Slug: "other-form"})
	require.NoError(t, err)

	// 在别的页面的入口上删除必须拒绝，记录保持原样
	err = f.submissions.Delete(other.ID, sub.ID)
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)

	count, err := f.subRepo.CountByPage(f.page.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestFindForPageEnforcesOwnership(t *testing.T) {
	f := newFixture(t)
	sub := f.addSubmission(t, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), map[string]interface{}{})

	other, err := f.forms.CreatePage(1, FormPageRequest{Title: "Other form", Slug: "other-form"})
	require.NoError(t, err)

	found, err := f.submissions.FindForPage(f.page.ID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, found.ID)

	_, err = f.submissions.FindForPage(other.ID, sub.ID)
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)
}
