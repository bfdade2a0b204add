package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），可穿透 fmt.Errorf("%w") 包装
//
// 使用场景：
//   - model 错误：UNKNOWN_ITEM, INVALID_ARTIFACT
//   - resolve 错误：NO_MATCH
//   - query 错误：MALFORMED_QUERY, INVALID_REQUEST_COUNT
type DomainError struct {
	Code    string // 错误代码（如 "UNKNOWN_ITEM", "MALFORMED_QUERY"）
	Message string // 错误消息
	Module  string // 模块名称（如 "model", "rank", "query"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 按 Module + Code 比较，便于 errors.Is 与哨兵错误配合。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Module == "" || e.Module == t.Module)
}

// IsDomainError 检查错误链中是否包含 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf 与 NewDomainError 相同，消息支持格式化。
func NewDomainErrorf(module, code, format string, args ...any) *DomainError {
	return NewDomainError(module, code, fmt.Sprintf(format, args...))
}

// 错误代码常量
const (
	// 通用错误代码
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误

	// 推荐引擎错误代码
	ErrorCodeUnknownItem         = "UNKNOWN_ITEM"          // 标题或 id 不在模型中
	ErrorCodeInvalidRequestCount = "INVALID_REQUEST_COUNT" // 请求数量 R < 1
	ErrorCodeMalformedQuery      = "MALFORMED_QUERY"       // 查询串无法解析
	ErrorCodeNoMatch             = "NO_MATCH"              // 模糊匹配低于阈值
	ErrorCodeInvalidArtifact     = "INVALID_ARTIFACT"      // 主题模型产物不一致
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleModel   = "model"   // 主题模型
	ModuleResolve = "resolve" // 标题纠错
	ModuleRank    = "rank"    // 距离排序
	ModuleRerank  = "rerank"  // 排名聚合
	ModuleQuery   = "query"   // 查询解析
	ModuleService = "service" // 服务模块
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsUnknownItem 检查错误是否为 UNKNOWN_ITEM
func IsUnknownItem(err error) bool { return hasCode(err, ErrorCodeUnknownItem) }

// IsInvalidRequestCount 检查错误是否为 INVALID_REQUEST_COUNT
func IsInvalidRequestCount(err error) bool { return hasCode(err, ErrorCodeInvalidRequestCount) }

// IsMalformedQuery 检查错误是否为 MALFORMED_QUERY
func IsMalformedQuery(err error) bool { return hasCode(err, ErrorCodeMalformedQuery) }

// IsNoMatch 检查错误是否为 NO_MATCH
func IsNoMatch(err error) bool { return hasCode(err, ErrorCodeNoMatch) }

// IsInvalidArtifact 检查错误是否为 INVALID_ARTIFACT
func IsInvalidArtifact(err error) bool { return hasCode(err, ErrorCodeInvalidArtifact) }
