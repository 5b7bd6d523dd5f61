// Package messaging 提供消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishContentGen 发布内容生成任务
func (p *Producer) PublishContentGen(ctx context.Context, runID string) (string, error) {
	msg, err := NewMessage(runID, MessageTypeContentGen, runID, &ContentGenPayload{RunID: runID})
	if err != nil {
		return "", err
	}

	return p.Publish(ctx, StreamContentGen, msg)
}

// PublishVoiceIngest 发布品牌声音样本入库任务
func (p *Producer) PublishVoiceIngest(ctx context.Context, id string, payload *VoiceIngestPayload) (string, error) {
	msg, err := NewMessage(id, MessageTypeVoiceIngest, "", payload)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("brand_id", payload.BrandID)
	return p.Publish(ctx, StreamVoiceIngest, msg)
}
