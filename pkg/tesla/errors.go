package tesla

import (
	"errors"
	"fmt"
)

// 错误定义
var (
	// ErrAuthenticationRequired 没有可用于认证的凭据
	ErrAuthenticationRequired = errors.New("tesla: authentication required")
	// ErrInvalidOptionsForCommand 指令缺少必需的结构化参数
	ErrInvalidOptionsForCommand = errors.New("tesla: invalid options for command")
)

// NetworkError 包装所有传输层、HTTP 状态和解码错误
type NetworkError struct {
	Op  string // 出错的端点，例如 "GET /api/1/vehicles"
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("tesla: network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError 服务端返回非 2xx 状态码
type StatusError struct {
	URL        string
	Status     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status response from %s: %s", e.URL, e.Status)
	}
	return fmt.Sprintf("http status response from %s: %s body=%s", e.URL, e.Status, e.Body)
}
