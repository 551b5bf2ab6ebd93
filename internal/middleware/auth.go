package middleware

import (
	"errors"
	"net/http"
	"strings"

	"showcase/internal/apperr"
	"showcase/internal/models"
	"showcase/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CheckUserKey = "user"
const UnreadCountKey = "unread_count"

// DevUserHeader 按 id 认证已同步的用户，仅限本地环境
const DevUserHeader = "X-User-ID"

// Claims 外部身份服务签发的 token
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret         []byte
	allowDevHeader bool
	users          *services.UserService
	notifications  *services.NotificationService
	log            *zap.Logger
}

// NewAuthenticator 创建认证中间件
func NewAuthenticator(secret string, allowDevHeader bool, users *services.UserService, notifications *services.NotificationService, log *zap.Logger) *Authenticator {
	return &Authenticator{
		secret:         []byte(secret),
		allowDevHeader: allowDevHeader,
		users:          users,
		notifications:  notifications,
		log:            log,
	}
}

// LoadUser 从 Bearer token（或开发用 header）解析当前用户并写入上下文。
// 未携带凭证的请求按匿名放行，凭证无效则直接拒绝。
func (a *Authenticator) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.resolve(c)
		if err != nil {
			status := apperr.HTTPStatus(err)
			if status == http.StatusInternalServerError {
				a.log.Error("Identity lookup failed", zap.Error(err))
				c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
				return
			}
			c.AbortWithStatusJSON(status, gin.H{"error": apperr.From(err).Message})
			return
		}
		if user != nil {
			c.Set(CheckUserKey, user)

			// 获取未读通知数
			if count, err := a.notifications.UnreadCount(c.Request.Context(), user.ID); err == nil {
				c.Set(UnreadCountKey, count)
			}
		}
		c.Next()
	}
}

func (a *Authenticator) resolve(c *gin.Context) (*models.User, error) {
	ctx := c.Request.Context()

	if header := c.GetHeader("Authorization"); header != "" {
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return nil, apperr.Unauthorized("malformed authorization header")
		}
		claims, err := a.parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, apperr.Unauthorized("invalid token")
		}
		id, err := uuid.Parse(claims.Subject)
		if err != nil {
			return nil, apperr.Unauthorized("invalid token subject")
		}
		return a.users.Mirror(ctx, id, claims.Email, models.ParseRole(claims.Role))
	}

	if a.allowDevHeader {
		if raw := c.GetHeader(DevUserHeader); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, apperr.Unauthorized("invalid %s header", DevUserHeader)
			}
			user, err := a.users.Get(ctx, id)
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Unauthorized("unknown user")
			}
			return user, err
		}
	}
	return nil, nil
}

func (a *Authenticator) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// AuthRequired 要求已登录
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// AdminRequired 要求管理员权限。
// 审核状态接口不使用它：项目不存在时必须先返回 404，再做角色检查。
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentUser(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// CurrentUser 返回当前用户，匿名请求返回 nil
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
