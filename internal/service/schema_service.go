package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"formflow_backend/internal/repository"
	"formflow_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SchemaField 表单页当前模式中的一列：稳定标识符加展示标签
type SchemaField struct {
	Identifier string `json:"identifier"`
	Label      string `json:"label"`
}

// SchemaService 解析表单页的当前字段模式。模式反映页面此刻的配置，
// 不是历史快照：老提交里已被移除的键不再产生列，新加字段对老提交显示缺失占位。
type SchemaService struct {
	PageRepo *repository.FormPageRepository
	Redis    *redis.Client // 可为 nil，此时直接查库
}

func NewSchemaService(pageRepo *repository.FormPageRepository, rdb *redis.Client) *SchemaService {
	return &SchemaService{PageRepo: pageRepo, Redis: rdb}
}

const schemaCacheTTL = 5 * time.Minute

func schemaCacheKey(pageID uint) string {
	return fmt.Sprintf("formflow:schema:%d", pageID)
}

// SchemaFor 返回页面的有序模式（sort_order 升序，同序按创建顺序）。
// 零字段的页面返回空切片，不算错误。
func (s *SchemaService) SchemaFor(pageID uint) ([]SchemaField, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(context.Background(), schemaCacheKey(pageID)).Result()
		if err == nil {
			var schema []SchemaField
			if jsonErr := json.Unmarshal([]byte(cached), &schema); jsonErr == nil {
				return schema, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("schema cache read failed", zap.Uint("pageID", pageID), zap.Error(err))
		}
	}

	fields, err := s.PageRepo.FieldsByPage(pageID)
	if err != nil {
		return nil, err
	}

	schema := make([]SchemaField, len(fields))
	for i, f := range fields {
		schema[i] = SchemaField{Identifier: f.Identifier, Label: f.Label}
	}

	if s.Redis != nil {
		if encoded, err := json.Marshal(schema); err == nil {
			if err := s.Redis.Set(context.Background(), schemaCacheKey(pageID), encoded, schemaCacheTTL).Err(); err != nil {
				logger.Log.Warn("schema cache write failed", zap.Uint("pageID", pageID), zap.Error(err))
			}
		}
	}

	return schema, nil
}

// Invalidate 字段增删改后丢弃缓存条目
func (s *SchemaService) Invalidate(pageID uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), schemaCacheKey(pageID)).Err(); err != nil {
		logger.Log.Warn("schema cache invalidation failed", zap.Uint("pageID", pageID), zap.Error(err))
	}
}
