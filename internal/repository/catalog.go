package repository

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/user/movierec/internal/model"
)

// Catalog 电影目录（只读参考数据）
//
// 进程生命周期内加载一次并缓存。加载失败不阻断启动，
// 目录降级为空表，诊断信息由 LoadError 暴露给调用方。
// 唯一的写路径是管理员修改类型字段。
type Catalog struct {
	path string

	mu      sync.RWMutex
	movies  []model.Movie
	loadErr error
}

// NewCatalog 创建目录
func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

// Load 加载目录数据，表头按 归一化后 的列名解析
func (c *Catalog) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	header, rows, err := readTable(c.path)
	if err != nil {
		c.movies = nil
		c.loadErr = fmt.Errorf("%w: %v", model.ErrDataLoad, err)
		return c.loadErr
	}

	cols := normalizeColumns(header)
	movies := make([]model.Movie, 0, len(rows))
	for _, row := range rows {
		m := model.Movie{
			ID:           field(row, cols, "movie_id"),
			Title:        field(row, cols, "title"),
			Genre:        field(row, cols, "genre"),
			ReleaseDate:  field(row, cols, "release_date"),
			RunningTime:  field(row, cols, "running_time"),
			RunningState: field(row, cols, "running_state"),
			Director:     field(row, cols, "director"),
			Actor:        field(row, cols, "actor"),
			Distributor:  field(row, cols, "distributor"),
			PosterFile:   field(row, cols, "poster_file"),
			PosterURL:    field(row, cols, "poster_url"),
			Description:  field(row, cols, "description"),
		}
		if m.Title == "" {
			continue
		}
		m.Rating, _ = strconv.ParseFloat(field(row, cols, "rating"), 64)
		movies = append(movies, m)
	}

	c.movies = movies
	c.loadErr = nil
	return nil
}

// LoadError 返回最近一次加载的诊断信息，加载成功时为 nil
func (c *Catalog) LoadError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// All 按目录顺序返回全部电影
func (c *Catalog) All() []model.Movie {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Movie, len(c.movies))
	copy(out, c.movies)
	return out
}

// Len 目录条目数
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.movies)
}

// FindByTitle 按标题精确查找，标题是目录的事实主键（未强制唯一，取第一条）
func (c *Catalog) FindByTitle(title string) (*model.Movie, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.movies {
		if c.movies[i].Title == title {
			m := c.movies[i]
			return &m, true
		}
	}
	return nil, false
}

// ListByGenre 按类型精确匹配（区分大小写），保持目录顺序
func (c *Catalog) ListByGenre(genre string) []model.Movie {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []model.Movie
	for _, m := range c.movies {
		if m.Genre == genre {
			out = append(out, m)
		}
	}
	return out
}

// Genres 目录中出现过的类型，按首次出现顺序去重
func (c *Catalog) Genres() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, m := range c.movies {
		if m.Genre == "" || seen[m.Genre] {
			continue
		}
		seen[m.Genre] = true
		out = append(out, m.Genre)
	}
	return out
}

// Search 标题子串搜索（不区分大小写）+ 可选类型过滤（精确匹配）
func (c *Catalog) Search(keyword, genre string) []model.Movie {
	c.mu.RLock()
	defer c.mu.RUnlock()

	kw := strings.ToLower(keyword)
	var out []model.Movie
	for _, m := range c.movies {
		if kw != "" && !strings.Contains(strings.ToLower(m.Title), kw) {
			continue
		}
		if genre != "" && m.Genre != genre {
			continue
		}
		out = append(out, m)
	}
	return out
}

// UpdateGenre 管理员改写类型字段，目录唯一的变更入口，改完全量写回
func (c *Catalog) UpdateGenre(title, genre string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.movies {
		if c.movies[i].Title == title {
			old := c.movies[i].Genre
			c.movies[i].Genre = genre
			if err := c.saveLocked(); err != nil {
				c.movies[i].Genre = old
				return err
			}
			return nil
		}
	}
	return model.ErrNotFound
}

// saveLocked 全量写回目录文件，调用方必须持有写锁
func (c *Catalog) saveLocked() error {
	header := []string{
		"movie_id", "title", "genre", "rating", "release_date", "running_time",
		"running_state", "director", "actor", "distributor", "poster_file",
		"poster_url", "description",
	}
	rows := make([][]string, 0, len(c.movies))
	for _, m := range c.movies {
		rows = append(rows, []string{
			m.ID, m.Title, m.Genre,
			strconv.FormatFloat(m.Rating, 'f', -1, 64),
			m.ReleaseDate, m.RunningTime, m.RunningState,
			m.Director, m.Actor, m.Distributor,
			m.PosterFile, m.PosterURL, m.Description,
		})
	}
	return writeTable(c.path, header, rows)
}
