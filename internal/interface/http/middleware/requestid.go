package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xiebiao/pharmacy/pkg/response"
)

// RequestIDHeader 请求关联ID的Header名
const RequestIDHeader = "X-Request-ID"

// RequestID 请求关联ID中间件
// 设计说明：
// 1. 调用方可以通过X-Request-ID传入自己的关联ID（网关/前端生成），
//    没有则服务端生成uuid
// 2. 写入Context供response包回填到响应体，同时回写Header
//    方便客户端排查
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(response.RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}
