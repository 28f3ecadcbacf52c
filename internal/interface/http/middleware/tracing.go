package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/xiebiao/bookshop/pkg/tracing"
)

// Tracing 为每个HTTP请求创建一个Span
//
// Span名用路由模板（如 GET /api/v1/orders/:id）而非实际路径，
// 保证同一接口的请求聚合到同一操作下。
// Tracer未初始化时otel返回no-op Span，中间件可以无条件挂载。
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		ctx, span := tracing.StartSpan(c.Request.Context(), "bookshop/http", c.Request.Method+" "+path)
		defer span.End()

		// 下游Handler通过Request Context创建子Span
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", path),
			attribute.Int("http.status_code", status),
			attribute.String("request.id", GetRequestID(c)),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
