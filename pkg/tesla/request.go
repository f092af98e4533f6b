package tesla

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// responseKeyPath API 把结果嵌套在 {"response": ...} 下
	responseKeyPath = "response"

	// maxResponseLength 响应体读取上限
	maxResponseLength = 4 << 20
)

// Doer 传输层，*http.Client 即满足该接口
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// redactor 调试日志输出前用于隐藏敏感字段
type redactor interface {
	redacted() any
}

// newRequest 构造 HTTP 请求，附加 Bearer token 和 JSON body
// token 由调用方传入，认证请求为 nil
func (c *Client) newRequest(ctx context.Context, ep Endpoint, token *Token, body any) (*http.Request, error) {
	method, target := ep.Resolve(c.useMockServer, c.baseURL, c.mockBaseURL)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if token != nil && token.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)

	if c.debug {
		c.logRequest(req, body)
	}
	return req, nil
}

func (c *Client) logRequest(req *http.Request, body any) {
	c.logger.Debug("Request",
		zap.String("method", req.Method),
		zap.String("url", redactURL(req.URL)))

	if body == nil {
		return
	}
	if r, ok := body.(redactor); ok {
		body = r.redacted()
	}
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return
	}
	c.logger.Debug("Request body", zap.String("body", string(data)))
}

// redactURL 隐藏 query 中的密码
func redactURL(u *url.URL) string {
	q := u.Query()
	if !q.Has("password") {
		return u.String()
	}
	q.Set("password", "<redacted>")
	redacted := *u
	redacted.RawQuery = q.Encode()
	return redacted.String()
}

// do 发送请求并返回 keyPath 下的原始 JSON
// keyPath 为空时返回整个响应体
func (c *Client) do(ctx context.Context, ep Endpoint, token *Token, body any, keyPath string) ([]byte, error) {
	op := ep.String()

	req, err := c.newRequest(ctx, ep, token, body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(ep.Kind, 0, time.Since(start))
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.metrics.observe(ep.Kind, resp.StatusCode, time.Since(start))

	reader := io.LimitedReader{R: resp.Body, N: maxResponseLength}
	data, err := io.ReadAll(&reader)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if c.debug {
		c.logger.Debug("Response",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.Int("bytes", len(data)))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{Op: op, Err: &StatusError{
			URL:        redactURL(req.URL),
			Status:     resp.Status,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}}
	}

	if keyPath == "" {
		return data, nil
	}

	payload, err := extractKeyPath(data, keyPath)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	return payload, nil
}

// extractKeyPath 取出嵌套在 keyPath 下的结果
func extractKeyPath(data []byte, keyPath string) ([]byte, error) {
	var envelope map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	payload, ok := envelope[keyPath]
	// jsoniter 把 null 解码为空 RawMessage
	if !ok || len(payload) == 0 || string(payload) == "null" {
		var apiErr string
		if raw, exists := envelope["error"]; exists {
			_ = json.Unmarshal(raw, &apiErr)
		}
		if apiErr != "" {
			return nil, fmt.Errorf("api error: %s", apiErr)
		}
		return nil, fmt.Errorf("decode response: missing %q", keyPath)
	}
	return payload, nil
}

// requestObject 发送请求并解码为 T，T 可以是结构体或切片
func requestObject[T any](ctx context.Context, c *Client, ep Endpoint, token *Token, body any, keyPath string) (T, error) {
	var out T
	data, err := c.do(ctx, ep, token, body, keyPath)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &NetworkError{Op: ep.String(), Err: fmt.Errorf("decode response: %w", err)}
	}
	return out, nil
}

// requestList 发送请求并解码为 []T
func requestList[T any](ctx context.Context, c *Client, ep Endpoint, token *Token, body any, keyPath string) ([]T, error) {
	return requestObject[[]T](ctx, c, ep, token, body, keyPath)
}

// requestAny 发送请求并解码为无类型 JSON
func requestAny(ctx context.Context, c *Client, ep Endpoint, token *Token, body any) (any, error) {
	return requestObject[any](ctx, c, ep, token, body, "")
}
