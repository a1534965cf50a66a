package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// Response 统一响应结构
// 设计说明：
// 1. OK表示业务是否成功，客户端只需判断此字段
// 2. Data是业务数据，成功时返回；Error是错误体，失败时返回
// 3. RequestID是请求关联ID（由requestid中间件注入），用于日志排查
// 4. 与HTTP状态码配合使用：业务错误映射为400/401/403/404/409，系统错误为500
type Response struct {
	OK        bool        `json:"ok"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorBody  `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorBody 错误响应体
type ErrorBody struct {
	Code    int    `json:"code"`    // 业务错误码（见pkg/errors）
	Message string `json:"message"` // 用户友好的错误提示
}

// RequestIDKey requestid中间件写入gin.Context的键
const RequestIDKey = "request_id"

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		OK:        true,
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Created 创建成功响应（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		OK:        true,
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Error 错误响应（自动处理AppError并映射HTTP状态码）
// 用法：
//
//	err := settleSaleUseCase.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	c.JSON(HTTPStatus(appErr.Code), Response{
		OK: false,
		Error: &ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
		RequestID: c.GetString(RequestIDKey),
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(HTTPStatus(code), Response{
		OK: false,
		Error: &ErrorBody{
			Code:    code,
			Message: message,
		},
		RequestID: c.GetString(RequestIDKey),
	})
}

// HTTPStatus 业务错误码 → HTTP状态码
// 映射规则（按错误码区段）：
// - 40100-40199: 401 未认证
// - 40200-40299: 409 状态冲突（生命周期不允许此操作）
// - 40300-40399: 403 无权限
// - 40400-40499: 404 资源不存在
// - 其余4xxxx:   400 业务/参数错误
// - 5xxxx:       500 系统错误
func HTTPStatus(code int) int {
	switch {
	case code >= 40100 && code <= 40199:
		return http.StatusUnauthorized
	case code >= 40200 && code <= 40299:
		return http.StatusConflict
	case code >= 40300 && code <= 40399:
		return http.StatusForbidden
	case code >= 40400 && code <= 40499:
		return http.StatusNotFound
	case code >= 40000 && code < 50000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// =========================================
// 分页响应结构
// =========================================

// PageData 分页数据封装
type PageData struct {
	List       interface{} `json:"list"`        // 数据列表
	Total      int64       `json:"total"`       // 总记录数
	Page       int         `json:"page"`        // 当前页码
	PageSize   int         `json:"page_size"`   // 每页大小
	TotalPages int         `json:"total_pages"` // 总页数
}

// NewPageData 创建分页数据
func NewPageData(list interface{}, total int64, page, pageSize int) *PageData {
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &PageData{
		List:       list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	Success(c, NewPageData(list, total, page, pageSize))
}
