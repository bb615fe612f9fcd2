package service

import (
	"math"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/user/movierec/internal/model"
	"github.com/user/movierec/internal/repository"
)

// RecommendSort 推荐结果排序方式
type RecommendSort string

const (
	// SortByCatalogRating 按目录声明的评分降序
	SortByCatalogRating RecommendSort = "rating"
	// SortByReviewCount 按短评数量降序
	SortByReviewCount RecommendSort = "reviews"
	// SortByAverageRating 按用户平均评分降序
	SortByAverageRating RecommendSort = "average"
)

// RecommendState 推荐结果状态，区分“还没有评分”和“过滤后没有候选”
type RecommendState string

const (
	RecommendOK           RecommendState = "ok"
	RecommendNoRatings    RecommendState = "no_ratings"
	RecommendNoCandidates RecommendState = "no_candidates"
)

// MovieAggregate 单部电影的聚合结果
type MovieAggregate struct {
	Average     float64 `json:"average_rating"`
	HasRatings  bool    `json:"has_ratings"`
	ReviewCount int     `json:"review_count"`
}

// AggregationService 聚合服务
//
// 基于评分表和电影目录计算平均分、短评数和同类型推荐候选。
// 聚合结果走进程内缓存，任何评分变更都会使对应电影的缓存失效。
type AggregationService struct {
	ratings *repository.RatingStore
	catalog *repository.Catalog
	agg     *cache.Cache
}

// NewAggregationService 创建聚合服务
func NewAggregationService(ratings *repository.RatingStore, catalog *repository.Catalog) *AggregationService {
	return &AggregationService{
		ratings: ratings,
		catalog: catalog,
		// 默认过期时间5分钟，清理间隔10分钟
		agg: cache.New(5*time.Minute, 10*time.Minute),
	}
}

// RatingsForMovie 某部电影的全部评分记录，保持存储顺序
func (s *AggregationService) RatingsForMovie(movie string) []model.Rating {
	return s.ratings.ListByMovie(movie)
}

// Aggregate 计算某部电影的平均分和短评数（带缓存）
func (s *AggregationService) Aggregate(movie string) MovieAggregate {
	if v, ok := s.agg.Get(movie); ok {
		return v.(MovieAggregate)
	}

	records := s.ratings.ListByMovie(movie)

	var result MovieAggregate
	if len(records) > 0 {
		// 先判空再求均值，绝不触发除零
		var sum float64
		for _, r := range records {
			sum += r.Rating
			if r.HasReview() {
				result.ReviewCount++
			}
		}
		result.Average = math.Round(sum/float64(len(records))*100) / 100
		result.HasRatings = true
	}

	s.agg.SetDefault(movie, result)
	return result
}

// AverageRating 平均评分（四舍五入到两位小数），没有评分时 ok 为 false
func (s *AggregationService) AverageRating(movie string) (float64, bool) {
	a := s.Aggregate(movie)
	return a.Average, a.HasRatings
}

// ReviewCount 带非空短评的评分记录数
func (s *AggregationService) ReviewCount(movie string) int {
	return s.Aggregate(movie).ReviewCount
}

// HasRated 用户是否已对该电影评分
func (s *AggregationService) HasRated(username, movie string) bool {
	return s.ratings.Has(username, movie)
}

// SubmitRating 提交评分，同一 (用户, 电影) 组合只允许一条记录。
// 唯一性除了这里的检查，在存储层也强制，绕过本方法同样无法写入重复记录。
func (s *AggregationService) SubmitRating(username, movie string, value float64, review string) error {
	if value < 0 || value > 10 {
		return model.ErrInvalidRating
	}
	if err := s.ratings.Append(model.Rating{
		Username: username,
		Movie:    movie,
		Rating:   math.Round(value*100) / 100,
		Review:   review,
	}); err != nil {
		return err
	}

	s.agg.Delete(movie)
	return nil
}

// EditRating 用户修改自己的评分，nil 字段保持原值
func (s *AggregationService) EditRating(username, movie string, newValue *float64, newReview *string) error {
	if newValue != nil && (*newValue < 0 || *newValue > 10) {
		return model.ErrInvalidRating
	}
	if err := s.ratings.Update(username, movie, newValue, newReview); err != nil {
		return err
	}

	s.agg.Delete(movie)
	return nil
}

// AdminEditReview 管理员改写任意用户的短评，评分值和归属不变
func (s *AggregationService) AdminEditReview(editor *model.Session, username, movie, newReview string) error {
	if !editor.IsAdmin() {
		return model.ErrUnauthorized
	}
	if err := s.ratings.Update(username, movie, nil, &newReview); err != nil {
		return err
	}

	s.agg.Delete(movie)
	return nil
}

// AdminDeleteRating 管理员删除任意用户的评分记录
func (s *AggregationService) AdminDeleteRating(editor *model.Session, username, movie string) error {
	if !editor.IsAdmin() {
		return model.ErrUnauthorized
	}
	if err := s.ratings.Delete(username, movie); err != nil {
		return err
	}

	s.agg.Delete(movie)
	return nil
}

// RecommendForUser 基于已评分类型做同类型推荐
//
// 候选 = 目录中类型命中用户已评分类型集合、且用户尚未评分的电影。
// 类型匹配是区分大小写的精确相等，不做模糊匹配。
// 排序稳定，并列时保持目录原始顺序。
func (s *AggregationService) RecommendForUser(username string, sortBy RecommendSort) ([]model.Movie, RecommendState) {
	rated := s.ratings.ListByUser(username)
	if len(rated) == 0 {
		return nil, RecommendNoRatings
	}

	ratedTitles := make(map[string]bool, len(rated))
	genres := make(map[string]bool)
	for _, r := range rated {
		ratedTitles[r.Movie] = true
		// 评过分但已不在目录里的电影，不贡献类型
		if m, ok := s.catalog.FindByTitle(r.Movie); ok && m.Genre != "" {
			genres[m.Genre] = true
		}
	}

	var candidates []model.Movie
	for _, m := range s.catalog.All() {
		if genres[m.Genre] && !ratedTitles[m.Title] {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil, RecommendNoCandidates
	}

	switch sortBy {
	case SortByReviewCount:
		sort.SliceStable(candidates, func(i, j int) bool {
			return s.Aggregate(candidates[i].Title).ReviewCount > s.Aggregate(candidates[j].Title).ReviewCount
		})
	case SortByAverageRating:
		// 没有任何评分的电影视为最低，排到末尾
		key := func(m model.Movie) float64 {
			a := s.Aggregate(m.Title)
			if !a.HasRatings {
				return -1
			}
			return a.Average
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return key(candidates[i]) > key(candidates[j])
		})
	default: // SortByCatalogRating
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Rating > candidates[j].Rating
		})
	}

	return candidates, RecommendOK
}
