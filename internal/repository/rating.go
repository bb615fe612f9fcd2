package repository

import (
	"errors"
	"io/fs"
	"strconv"
	"sync"

	"github.com/user/movierec/internal/model"
)

// RatingStore 评分表（CSV 全量读写）
//
// 记录保持文件中的原始顺序，短评为空串表示未填写。
// 与 UserStore 一样，每次变更立即全量写回。
type RatingStore struct {
	path string

	mu      sync.RWMutex
	ratings []model.Rating
}

// NewRatingStore 创建评分表
func NewRatingStore(path string) *RatingStore {
	return &RatingStore{path: path}
}

// Load 从文件加载全部评分，文件不存在视为零记录
func (s *RatingStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, rows, err := readTable(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.ratings = nil
		return nil
	}
	if err != nil {
		return err
	}

	cols := normalizeColumns(header)
	ratings := make([]model.Rating, 0, len(rows))
	for _, row := range rows {
		r := model.Rating{
			Username: field(row, cols, "username"),
			Movie:    field(row, cols, "movie"),
			Review:   field(row, cols, "review"),
		}
		if r.Username == "" || r.Movie == "" {
			continue
		}
		r.Rating, _ = strconv.ParseFloat(field(row, cols, "rating"), 64)
		ratings = append(ratings, r)
	}

	s.ratings = ratings
	return nil
}

// saveLocked 全量写回文件，调用方必须持有写锁
func (s *RatingStore) saveLocked() error {
	rows := make([][]string, 0, len(s.ratings))
	for _, r := range s.ratings {
		rows = append(rows, []string{
			r.Username,
			r.Movie,
			strconv.FormatFloat(r.Rating, 'f', -1, 64),
			r.Review,
		})
	}
	return writeTable(s.path, []string{"username", "movie", "rating", "review"}, rows)
}

// All 按存储顺序返回全部评分
func (s *RatingStore) All() []model.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Rating, len(s.ratings))
	copy(out, s.ratings)
	return out
}

// ListByMovie 某部电影的全部评分，保持存储顺序
func (s *RatingStore) ListByMovie(movie string) []model.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Rating
	for _, r := range s.ratings {
		if r.Movie == movie {
			out = append(out, r)
		}
	}
	return out
}

// ListByUser 某个用户的全部评分，保持存储顺序
func (s *RatingStore) ListByUser(username string) []model.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Rating
	for _, r := range s.ratings {
		if r.Username == username {
			out = append(out, r)
		}
	}
	return out
}

// Has 检查 (用户, 电影) 组合是否已有评分
func (s *RatingStore) Has(username, movie string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.ratings {
		if r.Username == username && r.Movie == movie {
			return true
		}
	}
	return false
}

// Get 查找 (用户, 电影) 组合的评分
func (s *RatingStore) Get(username, movie string) (*model.Rating, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.ratings {
		if s.ratings[i].Username == username && s.ratings[i].Movie == movie {
			r := s.ratings[i]
			return &r, true
		}
	}
	return nil, false
}

// Append 追加评分并写回。同一 (用户, 电影) 组合重复提交返回 ErrAlreadyRated，
// 唯一性在存储层强制，调用方跳过 Has 检查也不会产生重复记录。
func (s *RatingStore) Append(r model.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.ratings {
		if s.ratings[i].Username == r.Username && s.ratings[i].Movie == r.Movie {
			return model.ErrAlreadyRated
		}
	}

	s.ratings = append(s.ratings, r)
	if err := s.saveLocked(); err != nil {
		s.ratings = s.ratings[:len(s.ratings)-1]
		return err
	}
	return nil
}

// Update 更新已有评分，nil 字段保持原值，记录不存在返回 ErrNotFound
func (s *RatingStore) Update(username, movie string, newRating *float64, newReview *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.ratings {
		if s.ratings[i].Username == username && s.ratings[i].Movie == movie {
			old := s.ratings[i]
			if newRating != nil {
				s.ratings[i].Rating = *newRating
			}
			if newReview != nil {
				s.ratings[i].Review = *newReview
			}
			if err := s.saveLocked(); err != nil {
				s.ratings[i] = old
				return err
			}
			return nil
		}
	}
	return model.ErrNotFound
}

// Delete 删除评分并写回
func (s *RatingStore) Delete(username, movie string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.ratings {
		if s.ratings[i].Username == username && s.ratings[i].Movie == movie {
			removed := s.ratings[i]
			s.ratings = append(s.ratings[:i], s.ratings[i+1:]...)
			if err := s.saveLocked(); err != nil {
				rest := append([]model.Rating{removed}, s.ratings[i:]...)
				s.ratings = append(s.ratings[:i], rest...)
				return err
			}
			return nil
		}
	}
	return model.ErrNotFound
}
