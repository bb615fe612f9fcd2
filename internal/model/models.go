package model

import (
	"time"
)

// User 用户模型
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// 角色常量
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Session 会话身份（用户名 + 角色），所有需要授权的操作都显式传入
type Session struct {
	Username string
	Role     string
}

// IsAdmin 是否为管理员会话
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Movie 电影模型（目录参考数据，核心逻辑只读）
type Movie struct {
	ID           string  `json:"movie_id,omitempty"`
	Title        string  `json:"title"`
	Genre        string  `json:"genre"`
	Rating       float64 `json:"rating"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	RunningTime  string  `json:"running_time,omitempty"`
	RunningState string  `json:"running_state,omitempty"`
	Director     string  `json:"director,omitempty"`
	Actor        string  `json:"actor,omitempty"`
	Distributor  string  `json:"distributor,omitempty"`
	PosterFile   string  `json:"poster_file,omitempty"`
	PosterURL    string  `json:"poster_url,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// Rating 评分记录（含可选短评），Movie 字段对应目录中的电影标题
type Rating struct {
	Username string  `json:"username"`
	Movie    string  `json:"movie"`
	Rating   float64 `json:"rating"`
	Review   string  `json:"review,omitempty"`
}

// HasReview 是否带有非空短评
func (r *Rating) HasReview() bool {
	return r.Review != ""
}
