package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持 errors.Is / errors.As，可被 fmt.Errorf("%w") 包装后继续识别
//
// 使用场景：
//   - Index 错误：NOT_FOUND（未知商品名/用户）、EMPTY_INDEX
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - Dataset 错误：INVALID_INPUT
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "EMPTY_INDEX"）
	Message string // 错误消息
	Module  string // 模块名称（如 "index", "store", "engine"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 按 Module + Code 判等；target 的 Message 非空时还要求 Message 一致，
// 以区分同一模块下的 ErrItemNotFound 与 ErrUserNotFound。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if e.Code != t.Code || e.Module != t.Module {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// GetDomainError 获取错误链中的 DomainError，如果不存在则返回 nil
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

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在（未知商品名 / 用户 / key）
	ErrorCodeEmptyIndex   = "EMPTY_INDEX"   // 索引建立在零个商品 / 用户之上
	ErrorCodeNotSupported = "NOT_SUPPORTED" // 不支持的后端或操作
	ErrorCodeUnavailable  = "UNAVAILABLE"   // 服务不可用
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入无效
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleIndex   = "index"   // 相似度索引
	ModuleEngine  = "engine"  // 推荐引擎
	ModuleDataset = "dataset" // 预处理
)

// 索引错误定义
var (
	// ErrItemNotFound 商品名不在内容索引中
	ErrItemNotFound = NewDomainError(ModuleIndex, ErrorCodeNotFound, "index: item not found")

	// ErrUserNotFound 用户不在用户×商品矩阵中
	ErrUserNotFound = NewDomainError(ModuleIndex, ErrorCodeNotFound, "index: user not found")

	// ErrEmptyIndex 索引为空；查询退化为空结果
	ErrEmptyIndex = NewDomainError(ModuleIndex, ErrorCodeEmptyIndex, "index: empty index")
)

// IsNotFound 检查错误是否为 NOT_FOUND（任意模块）
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsEmptyIndex 检查错误是否为 EMPTY_INDEX
func IsEmptyIndex(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeEmptyIndex
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}
