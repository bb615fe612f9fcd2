package handler

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/movierec/internal/middleware"
	"github.com/user/movierec/internal/model"
	"github.com/user/movierec/internal/service"
	"github.com/user/movierec/internal/utils"
)

// movieView 电影 + 聚合数据的展示结构
type movieView struct {
	model.Movie
	AverageRating *float64 `json:"average_rating"` // null 表示还没有评分
	ReviewCount   int      `json:"review_count"`
}

// newMovieView 组装展示结构
func (h *Handler) newMovieView(m model.Movie) movieView {
	v := movieView{Movie: m}
	agg := h.Agg.Aggregate(m.Title)
	if agg.HasRatings {
		avg := agg.Average
		v.AverageRating = &avg
	}
	v.ReviewCount = agg.ReviewCount
	return v
}

// ==================== 目录浏览 ====================

// ListMovies 目录检索：标题子串 + 类型过滤 + 切片分页
func (h *Handler) ListMovies(c *gin.Context) {
	keyword := c.Query("q")
	genre := c.Query("genre")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	// 旧系统每页 5 条
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "5"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 5
	}

	// 过滤结果走 LRU 缓存，聚合数据每次现算（有自己的失效策略）
	cacheKey := keyword + "|" + genre
	matched, ok := h.searchCache.Get(cacheKey)
	if !ok {
		matched = h.Stores.Catalog.Search(keyword, genre)
		h.searchCache.Set(cacheKey, matched)
	}

	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]movieView, 0, end-start)
	for _, m := range matched[start:end] {
		items = append(items, h.newMovieView(m))
	}

	resp := gin.H{
		"items":       items,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	}
	// 目录加载失败时降级为空表，把诊断信息带给调用方而不是中断
	if err := h.Stores.Catalog.LoadError(); err != nil {
		resp["catalog_error"] = err.Error()
	}

	utils.Success(c, resp)
}

// GetMovie 电影详情（含评分记录与短评）
func (h *Handler) GetMovie(c *gin.Context) {
	title := c.Param("title")

	movie, ok := h.Stores.Catalog.FindByTitle(title)
	if !ok {
		utils.NotFound(c, "电影不存在")
		return
	}

	ratings := h.Agg.RatingsForMovie(title)
	reviews := make([]model.Rating, 0)
	for _, r := range ratings {
		if r.HasReview() {
			reviews = append(reviews, r)
		}
	}

	resp := gin.H{
		"movie":   h.newMovieView(*movie),
		"ratings": ratings,
		"reviews": reviews,
	}

	// 已登录用户带上是否评过分，供前端屏蔽重复提交
	if sess := middleware.GetSession(c); sess != nil {
		resp["has_rated"] = h.Agg.HasRated(sess.Username, title)
	}

	utils.Success(c, resp)
}

// ListMovieRatings 某部电影的全部评分记录
func (h *Handler) ListMovieRatings(c *gin.Context) {
	title := c.Param("title")
	if _, ok := h.Stores.Catalog.FindByTitle(title); !ok {
		utils.NotFound(c, "电影不存在")
		return
	}
	utils.Success(c, h.Agg.RatingsForMovie(title))
}

// Genres 目录中的类型列表
func (h *Handler) Genres(c *gin.Context) {
	utils.Success(c, h.Stores.Catalog.Genres())
}

// ==================== 评分 ====================

// SubmitRatingReq 提交评分请求
type SubmitRatingReq struct {
	Rating float64 `json:"rating" binding:"gte=0,lte=10"`
	Review string  `json:"review"`
}

// SubmitRating 提交评分和短评，每人每部电影只能提交一次
func (h *Handler) SubmitRating(c *gin.Context) {
	sess := middleware.GetSession(c)
	title := c.Param("title")

	if _, ok := h.Stores.Catalog.FindByTitle(title); !ok {
		utils.NotFound(c, "电影不存在")
		return
	}

	var req SubmitRatingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	if err := h.Agg.SubmitRating(sess.Username, title, req.Rating, req.Review); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "评分和短评已保存", nil)
}

// EditRatingReq 修改评分请求，nil 字段保持原值
type EditRatingReq struct {
	Rating *float64 `json:"rating" binding:"omitempty,gte=0,lte=10"`
	Review *string  `json:"review"`
}

// EditRating 用户修改自己的评分或短评
func (h *Handler) EditRating(c *gin.Context) {
	sess := middleware.GetSession(c)
	title := c.Param("title")

	var req EditRatingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	if err := h.Agg.EditRating(sess.Username, title, req.Rating, req.Review); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "评分已更新", nil)
}

// MyRatings 当前用户的全部评分（我的活动）
func (h *Handler) MyRatings(c *gin.Context) {
	sess := middleware.GetSession(c)
	utils.Success(c, h.Stores.Rating.ListByUser(sess.Username))
}

// ==================== 推荐 ====================

// Recommendations 同类型推荐
//
// sort 取值：rating（目录评分）、reviews（短评数）、average（用户平均分），
// 均为降序稳定排序，并列保持目录顺序。
func (h *Handler) Recommendations(c *gin.Context) {
	sess := middleware.GetSession(c)

	sortBy := service.RecommendSort(c.DefaultQuery("sort", string(service.SortByCatalogRating)))
	switch sortBy {
	case service.SortByCatalogRating, service.SortByReviewCount, service.SortByAverageRating:
	default:
		utils.BadRequest(c, "不支持的排序方式: "+string(sortBy))
		return
	}

	movies, state := h.Agg.RecommendForUser(sess.Username, sortBy)

	items := make([]movieView, 0, len(movies))
	for _, m := range movies {
		items = append(items, h.newMovieView(m))
	}

	var message string
	switch state {
	case service.RecommendNoRatings:
		message = "还没有评分记录，先给喜欢的电影打个分吧"
	case service.RecommendNoCandidates:
		message = "同类型的电影都已经看过了"
	default:
		message = "success"
	}

	utils.SuccessWithMessage(c, message, gin.H{
		"state": state,
		"items": items,
	})
}

// ==================== 海报 ====================

// Poster 按相对文件名返回本地海报，缺失是软性“无图”状态，不报错
func (h *Handler) Poster(c *gin.Context) {
	// 只取文件名部分，防止目录穿越
	name := filepath.Base(c.Param("file"))
	path := filepath.Join(h.Config.PosterDir, name)

	if _, err := os.Stat(path); err != nil {
		utils.NotFound(c, "暂无海报")
		return
	}

	c.File(path)
}
