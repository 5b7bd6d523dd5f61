// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionVoiceSamples 品牌语调范文集合
	CollectionVoiceSamples = "voice_samples"

	// VectorDimension 向量维度
	VectorDimension = 1024
)

// VoiceSamplesSchema 品牌语调范文 Collection Schema
func VoiceSamplesSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionVoiceSamples,
		Description:    "Approved brand writing samples for semantic retrieval",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": "1024",
				},
			},
			{
				Name:     "brand_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "title",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "source",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "text_content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}
}

// VoiceSample 品牌语调范文数据结构
type VoiceSample struct {
	ID          string    `json:"id"`
	Vector      []float32 `json:"vector"`
	BrandID     string    `json:"brand_id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	TextContent string    `json:"text_content"`
}

// PartitionName 生成品牌分区名称
func PartitionName(brandID string) string {
	return "brand_" + brandID
}
