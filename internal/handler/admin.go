package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/movierec/internal/middleware"
	"github.com/user/movierec/internal/utils"
)

// ==================== 管理后台 ====================

// AdminUsers 用户列表
func (h *Handler) AdminUsers(c *gin.Context) {
	users := h.Stores.User.ListAll()
	utils.Success(c, gin.H{
		"users": users,
		"total": len(users),
	})
}

// AdminDeleteUser 删除用户
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	target := c.Param("username")

	if err := h.Auth.DeleteUser(middleware.GetSession(c), target); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "用户已删除", nil)
}

// AdminEditReviewReq 管理员改写短评请求
type AdminEditReviewReq struct {
	Username string `json:"username" binding:"required"`
	Movie    string `json:"movie" binding:"required"`
	Review   string `json:"review"`
}

// AdminEditReview 管理员改写任意用户的短评，评分值和归属不变
func (h *Handler) AdminEditReview(c *gin.Context) {
	var req AdminEditReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	if err := h.Agg.AdminEditReview(middleware.GetSession(c), req.Username, req.Movie, req.Review); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "短评已更新", nil)
}

// AdminDeleteRating 管理员删除评分记录
func (h *Handler) AdminDeleteRating(c *gin.Context) {
	username := c.Query("username")
	movie := c.Query("movie")
	if username == "" || movie == "" {
		utils.BadRequest(c, "username 和 movie 不能为空")
		return
	}

	if err := h.Agg.AdminDeleteRating(middleware.GetSession(c), username, movie); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "评分记录已删除", nil)
}

// AdminUpdateGenreReq 管理员修改类型请求
type AdminUpdateGenreReq struct {
	Title string `json:"title" binding:"required"`
	Genre string `json:"genre" binding:"required"`
}

// AdminUpdateGenre 管理员改写目录中某部电影的类型字段
func (h *Handler) AdminUpdateGenre(c *gin.Context) {
	var req AdminUpdateGenreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	if err := h.Stores.Catalog.UpdateGenre(req.Title, req.Genre); err != nil {
		respondError(c, err)
		return
	}

	// 目录变了，检索缓存整体作废
	h.searchCache.Clear()

	utils.SuccessWithMessage(c, "类型已更新", nil)
}
