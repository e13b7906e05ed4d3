package service

import (
	"testing"

	"formflow_backend/internal/model"
	"formflow_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaForOrdering(t *testing.T) {
	db := newTestDB(t)
	pageRepo := repository.NewFormPageRepository(db)
	schemaSvc := NewSchemaService(pageRepo, nil)

	page := &model.FormPage{Title: "Survey", Slug: "survey", OwnerID: 1, Live: true}
	require.NoError(t, pageRepo.Create(page))

	// sort_order 优先，同序按创建顺序
	for _, f := range []model.FormField{
		{PageID: page.ID, Identifier: "third", Label: "Third", FieldType: model.FieldSingleLine, SortOrder: 2},
		{PageID: page.ID, Identifier: "first", Label: "First", FieldType: model.FieldSingleLine, SortOrder: 1},
		{PageID: page.ID, Identifier: "fourth", Label: "Fourth", FieldType: model.FieldSingleLine, SortOrder: 2},
		{PageID: page.ID, Identifier: "second", Label: "Second", FieldType: model.FieldSingleLine, SortOrder: 1},
	} {
		field := f
		require.NoError(t, pageRepo.CreateField(&field))
	}

	schema, err := schemaSvc.SchemaFor(page.ID)
	require.NoError(t, err)

	identifiers := make([]string, len(schema))
	for i, s := range schema {
		identifiers[i] = s.Identifier
	}
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, identifiers)
	assert.Equal(t, "First", schema[0].Label)
}

func TestSchemaForEmptySchema(t *testing.T) {
	db := newTestDB(t)
	pageRepo := repository.NewFormPageRepository(db)
	schemaSvc := NewSchemaService(pageRepo, nil)

	page := &model.FormPage{Title: "Bare", Slug: "bare", OwnerID: 1, Live: true}
	require.NoError(t, pageRepo.Create(page))

	// 零字段页面合法：空模式，不是错误
	schema, err := schemaSvc.SchemaFor(page.ID)
	require.NoError(t, err)
	assert.Empty(t, schema)
}
