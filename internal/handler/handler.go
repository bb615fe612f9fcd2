package handler

import (
	"errors"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/user/movierec/internal/config"
	"github.com/user/movierec/internal/middleware"
	"github.com/user/movierec/internal/model"
	"github.com/user/movierec/internal/repository"
	"github.com/user/movierec/internal/service"
	"github.com/user/movierec/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Stores *repository.Stores
	Config *config.Config
	Auth   *service.AuthService
	Agg    *service.AggregationService

	// 目录检索结果缓存，管理员改目录时整体清空
	searchCache *utils.SearchCache[[]model.Movie]
}

// NewHandler 创建处理器
func NewHandler(stores *repository.Stores, cfg *config.Config) *Handler {
	return &Handler{
		Stores:      stores,
		Config:      cfg,
		Auth:        service.NewAuthService(stores.User, cfg.AdminUsername, cfg.AdminPassword),
		Agg:         service.NewAggregationService(stores.Rating, stores.Catalog),
		searchCache: utils.NewSearchCache[[]model.Movie](1000, time.Hour),
	}
}

// respondError 领域错误到 HTTP 响应的统一映射，全部可恢复，不中断进程
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrDuplicateUsername), errors.Is(err, model.ErrAlreadyRated):
		utils.Conflict(c, err.Error())
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrNotAuthenticated):
		utils.Unauthorized(c, err.Error())
	case errors.Is(err, model.ErrUnauthorized):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, model.ErrInvalidRating):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, model.ErrNotFound):
		utils.NotFound(c, err.Error())
	default:
		utils.InternalServerError(c, "")
	}
}

// bindMessage 把 binding 校验错误转换为用户可见提示
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return "缺少必填字段: " + fe.Field()
		case "min":
			return "字段过短: " + fe.Field()
		case "max":
			return "字段过长: " + fe.Field()
		case "gte", "lte":
			return "字段超出范围: " + fe.Field()
		}
		return "字段不合法: " + fe.Field()
	}
	return "请求参数不合法"
}

// ==================== 认证 ====================

// RegisterReq 注册请求
type RegisterReq struct {
	Username string `json:"username" binding:"required,min=2,max=20"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register 注册处理
func (h *Handler) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	if err := h.Auth.Register(req.Username, req.Password); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "注册成功，现在可以登录了", gin.H{"username": req.Username})
}

// LoginReq 登录请求
type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录处理
func (h *Handler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	sess, err := h.Auth.Authenticate(req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	// 签发 JWT Cookie
	token, err := middleware.GenerateToken(sess.Username, sess.Role, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		utils.InternalServerError(c, "登录失败，请重试")
		return
	}
	c.SetCookie("token", token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)

	// 保存会话身份到 Session
	session := sessions.Default(c)
	session.Set("session", *sess)
	session.Save()

	utils.Success(c, gin.H{
		"username": sess.Username,
		"role":     sess.Role,
		"token":    token,
	})
}

// Logout 登出，无条件清理会话
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)

	session := sessions.Default(c)
	session.Clear()
	session.Save()

	utils.SuccessWithMessage(c, "已登出", nil)
}

// Me 当前会话身份
func (h *Handler) Me(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess == nil {
		// JWT 没带上时退回 Session 里的身份
		session := sessions.Default(c)
		if v := session.Get("session"); v != nil {
			if s, ok := v.(model.Session); ok {
				sess = &s
			}
		}
	}
	if sess == nil {
		utils.Unauthorized(c, "")
		return
	}

	utils.Success(c, gin.H{"username": sess.Username, "role": sess.Role})
}

// ChangePasswordReq 修改密码请求
type ChangePasswordReq struct {
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword 修改当前用户密码，旧密码随即失效
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	if err := h.Auth.ChangePassword(middleware.GetSession(c), req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "密码已更新", nil)
}
