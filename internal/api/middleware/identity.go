package middleware

import (
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDKey 請求上下文中的用戶標識鍵
const UserIDKey = "user_id"

// RequireUser 用戶識別中間件
// 身份簽發由上游閘道負責，此處只要求 X-User-ID 已解析完成
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			common.LogWarn("缺少用戶標識",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(common.ErrMissingUserID.Status, gin.H{
				"error": "Missing X-User-ID header",
				"code":  common.ErrMissingUserID.Code,
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID 從請求上下文讀取用戶標識
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
