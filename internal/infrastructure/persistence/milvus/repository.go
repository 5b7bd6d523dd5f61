// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"content-factory-api/pkg/metrics"
)

// Repository 品牌语调范文向量仓储
type Repository struct {
	client *Client
}

// NewRepository 创建向量仓储
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// SearchParams 检索参数
type SearchParams struct {
	BrandID     string
	QueryVector []float32
	TopK        int
}

// SearchResult 检索结果
type SearchResult struct {
	ID          string
	Score       float32
	Title       string
	TextContent string
}

// CreateCollection 创建集合
func (r *Repository) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex 创建 HNSW 索引
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// CreatePartition 创建品牌分区
func (r *Repository) CreatePartition(ctx context.Context, collection, brandID string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreatePartition",
		trace.WithAttributes(
			attribute.String("collection", collection),
			attribute.String("partition", PartitionName(brandID)),
		))
	defer span.End()

	collName := r.client.CollectionName(collection)
	return r.client.milvus.CreatePartition(ctx, collName, PartitionName(brandID))
}

// SearchVoiceSamples 按语义检索品牌范文
func (r *Repository) SearchVoiceSamples(ctx context.Context, params *SearchParams) ([]*SearchResult, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchVoiceSamples",
		trace.WithAttributes(
			attribute.String("brand_id", params.BrandID),
			attribute.Int("top_k", params.TopK),
		))
	defer span.End()

	start := time.Now()
	collName := r.client.CollectionName(CollectionVoiceSamples)

	// 指定品牌时限定到品牌分区；分区不存在视为无范文
	var partitions []string
	filter := ""
	if params.BrandID != "" {
		partitionName := PartitionName(params.BrandID)
		if has, err := r.client.milvus.HasPartition(ctx, collName, partitionName); err != nil {
			span.RecordError(err)
			metrics.MilvusSearchTotal.WithLabelValues(CollectionVoiceSamples, "error").Inc()
			return nil, fmt.Errorf("failed to check partition: %w", err)
		} else if !has {
			return []*SearchResult{}, nil
		}
		partitions = []string{partitionName}
		filter = fmt.Sprintf(`brand_id == "%s"`, params.BrandID)
	}

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		partitions,
		filter,
		[]string{"id", "title", "text_content"},
		[]entity.Vector{entity.FloatVector(params.QueryVector)},
		"vector",
		entity.COSINE,
		params.TopK,
		sp,
	)
	metrics.MilvusSearchDuration.WithLabelValues(CollectionVoiceSamples).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		metrics.MilvusSearchTotal.WithLabelValues(CollectionVoiceSamples, "error").Inc()
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	metrics.MilvusSearchTotal.WithLabelValues(CollectionVoiceSamples, "success").Inc()

	var searchResults []*SearchResult
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			sr := &SearchResult{
				Score: result.Scores[i],
			}

			if idCol, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				sr.ID = idCol.Data()[i]
			}
			if titleCol, ok := result.Fields.GetColumn("title").(*entity.ColumnVarChar); ok {
				sr.Title = titleCol.Data()[i]
			}
			if textCol, ok := result.Fields.GetColumn("text_content").(*entity.ColumnVarChar); ok {
				sr.TextContent = textCol.Data()[i]
			}

			searchResults = append(searchResults, sr)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(searchResults)))
	return searchResults, nil
}

// InsertVoiceSamples 插入品牌范文
func (r *Repository) InsertVoiceSamples(ctx context.Context, brandID string, samples []*VoiceSample) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.InsertVoiceSamples",
		trace.WithAttributes(
			attribute.String("brand_id", brandID),
			attribute.Int("count", len(samples)),
		))
	defer span.End()

	if len(samples) == 0 {
		return nil
	}

	collName := r.client.CollectionName(CollectionVoiceSamples)
	partitionName := PartitionName(brandID)

	// 确保分区存在
	has, _ := r.client.milvus.HasPartition(ctx, collName, partitionName)
	if !has {
		if err := r.CreatePartition(ctx, CollectionVoiceSamples, brandID); err != nil {
			return err
		}
	}

	ids := make([]string, len(samples))
	vectors := make([][]float32, len(samples))
	brandIDs := make([]string, len(samples))
	titles := make([]string, len(samples))
	sources := make([]string, len(samples))
	textContents := make([]string, len(samples))

	for i, s := range samples {
		ids[i] = s.ID
		vectors[i] = s.Vector
		brandIDs[i] = s.BrandID
		titles[i] = s.Title
		sources[i] = s.Source
		textContents[i] = s.TextContent
	}

	idCol := entity.NewColumnVarChar("id", ids)
	vectorCol := entity.NewColumnFloatVector("vector", VectorDimension, vectors)
	brandCol := entity.NewColumnVarChar("brand_id", brandIDs)
	titleCol := entity.NewColumnVarChar("title", titles)
	sourceCol := entity.NewColumnVarChar("source", sources)
	textCol := entity.NewColumnVarChar("text_content", textContents)

	_, err := r.client.milvus.Insert(ctx, collName, partitionName,
		idCol, vectorCol, brandCol, titleCol, sourceCol, textCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert voice samples: %w", err)
	}

	return nil
}

// DeleteVoiceSamplesByBrand 删除品牌的全部范文
func (r *Repository) DeleteVoiceSamplesByBrand(ctx context.Context, brandID string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.DeleteVoiceSamplesByBrand",
		trace.WithAttributes(attribute.String("brand_id", brandID)))
	defer span.End()

	collName := r.client.CollectionName(CollectionVoiceSamples)
	partitionName := PartitionName(brandID)

	if has, err := r.client.milvus.HasPartition(ctx, collName, partitionName); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to check partition: %w", err)
	} else if !has {
		return nil
	}

	filter := fmt.Sprintf(`brand_id == "%s"`, brandID)
	if err := r.client.milvus.Delete(ctx, collName, partitionName, filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete voice samples: %w", err)
	}
	return nil
}

// EnsureVoiceSamplesCollection 确保 voice_samples 集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureVoiceSamplesCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionVoiceSamples)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, VoiceSamplesSchema()); err != nil {
			return err
		}
		// 新建集合时创建索引；若失败，允许后续由运维介入。
		_ = r.CreateIndex(ctx, CollectionVoiceSamples)
	}

	return r.client.LoadCollection(ctx, CollectionVoiceSamples)
}
