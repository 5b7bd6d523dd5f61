package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"content-factory-api/internal/config"
	"content-factory-api/internal/domain/service"
	"content-factory-api/pkg/logger"
	"content-factory-api/pkg/metrics"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// FailureKind 调用失败分类，重试决策依赖显式分类而不是异常传播
type FailureKind int

const (
	FailureTransient FailureKind = iota // 超时、空响应等，可原样重试
	FailurePermanent                    // 拒绝、参数错误等，立即上抛
)

// CallError 带分类的 LLM 调用错误
type CallError struct {
	Kind FailureKind
	Err  error
}

func (e *CallError) Error() string {
	if e.Kind == FailureTransient {
		return "transient llm failure: " + e.Err.Error()
	}
	return "permanent llm failure: " + e.Err.Error()
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// IsTransient 判断错误是否可重试
func IsTransient(err error) bool {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Kind == FailureTransient
	}
	return false
}

// CallOptions 单次调用的生成参数
type CallOptions struct {
	Temperature float32
	MaxTokens   int
}

// Client 封装 Eino ChatModel，提供带超时与错误分类的补全调用
type Client struct {
	factory  *EinoFactory
	provider string
	model    string
	timeout  time.Duration
}

// NewClient 创建 LLM 客户端
func NewClient(cfg *config.Config, factory *EinoFactory) *Client {
	provider := cfg.LLM.DefaultProvider
	providerCfg := cfg.LLM.Providers[provider]
	return &Client{
		factory:  factory,
		provider: provider,
		model:    providerCfg.Model,
		timeout:  providerCfg.Timeout,
	}
}

// Complete 执行一次补全调用
// 返回的错误总是 *CallError，调用方据此决定重试或立即失败
func (c *Client) Complete(ctx context.Context, msgs []*schema.Message, opts CallOptions) (string, error) {
	chatModel, err := c.factory.Default(ctx)
	if err != nil {
		return "", &CallError{Kind: FailurePermanent, Err: err}
	}

	ctx = service.WithProvider(ctx, c.provider)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	modelOpts := []model.Option{
		model.WithTemperature(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		modelOpts = append(modelOpts, model.WithMaxTokens(opts.MaxTokens))
	}

	start := time.Now()
	resp, err := chatModel.Generate(ctx, msgs, modelOpts...)
	metrics.LLMCallDuration.WithLabelValues(c.provider, c.model).Observe(time.Since(start).Seconds())

	if err != nil {
		kind := classify(err)
		status := "permanent_error"
		if kind == FailureTransient {
			status = "transient_error"
		}
		metrics.LLMCallTotal.WithLabelValues(c.provider, c.model, status).Inc()
		logger.Warn(ctx, "llm call failed", "provider", c.provider, "status", status, "error", err.Error())
		return "", &CallError{Kind: kind, Err: err}
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		metrics.LLMCallTotal.WithLabelValues(c.provider, c.model, "empty").Inc()
		return "", &CallError{Kind: FailureTransient, Err: errors.New("empty completion")}
	}

	metrics.LLMCallTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(c.provider, c.model, "prompt").Add(float64(resp.ResponseMeta.Usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(c.provider, c.model, "completion").Add(float64(resp.ResponseMeta.Usage.CompletionTokens))
	}
	return content, nil
}

// classify 将底层错误映射到失败分类
func classify(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTransient
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return FailureTransient
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"):
		return FailureTransient
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "connection reset"):
		return FailureTransient
	case strings.Contains(msg, "502"), strings.Contains(msg, "503"), strings.Contains(msg, "504"):
		return FailureTransient
	default:
		return FailurePermanent
	}
}
