package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"formflow_backend/internal/model"
	"formflow_backend/internal/repository"
	"formflow_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// fixture 重建观察到的典型场景：一个 contact-us 页面，
// 三个字段（Your email / Your message / Your choices），两条新旧提交
type fixture struct {
	db          *gorm.DB
	pageRepo    *repository.FormPageRepository
	subRepo     *repository.FormSubmissionRepository
	schema      *SchemaService
	forms       *FormService
	submissions *SubmissionService
	page        *model.FormPage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	f := &fixture{
		db:       db,
		pageRepo: repository.NewFormPageRepository(db),
		subRepo:  repository.NewFormSubmissionRepository(db),
	}
	f.schema = NewSchemaService(f.pageRepo, nil)
	f.forms = NewFormService(f.pageRepo, f.subRepo, f.schema)
	f.submissions = NewSubmissionService(f.subRepo, f.schema)

	page, err := f.forms.CreatePage(1, FormPageRequest{Title: "Contact us", Slug: "contact-us"})
	require.NoError(t, err)
	f.page = page

	fields := []struct {
		label     string
		fieldType model.FieldType
	}{
		{"Your email", model.FieldEmail},
		{"Your message", model.FieldMultiLine},
		{"Your choices", model.FieldCheckboxes},
	}
	for i, fd := range fields {
		_, err := f.forms.AddField(page.ID, FormFieldRequest{
			Label:     fd.label,
			FieldType: fd.fieldType,
			SortOrder: i + 1,
		})
		require.NoError(t, err)
	}

	return f
}

func (f *fixture) addSubmission(t *testing.T, submitTime time.Time, answers map[string]interface{}) *model.FormSubmission {
	t.Helper()
	blob, err := json.Marshal(answers)
	require.NoError(t, err)

	sub := &model.FormSubmission{
		PageID:     f.page.ID,
		SubmitTime: submitTime,
		FormData:   blob,
	}
	require.NoError(t, f.subRepo.Create(sub))
	return sub
}

func (f *fixture) addContactSubmissions(t *testing.T) {
	f.addSubmission(t, time.Date(2013, 1, 1, 12, 0, 0, 0, time.UTC), map[string]interface{}{
		"your-email":   "old@example.com",
		"your-message": "this is a really old message",
	})
	f.addSubmission(t, time.Date(2014, 1, 1, 12, 0, 0, 0, time.UTC), map[string]interface{}{
		"your-email":   "new@example.com",
		"your-message": "this is a fairly new message",
	})
}

// addBulkSubmissions 灌入 n 条提交，用于分页场景
func (f *fixture) addBulkSubmissions(t *testing.T, n int) {
	base := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		f.addSubmission(t, base.Add(time.Duration(i)*time.Minute), map[string]interface{}{
			"your-message": fmt.Sprintf("bulk %d", i),
		})
	}
}
