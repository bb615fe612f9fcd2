package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Env       string
	AppSecret string
	JWTExpiry time.Duration
	Port      string
	SiteName  string

	// 数据文件路径，三张表都是 CP949 编码的 CSV
	DataDir     string
	CatalogFile string
	UsersFile   string
	RatingsFile string
	PosterDir   string

	// 内置管理员凭据，不写入用户表，认证时优先于用户表检查
	AdminUsername string
	AdminPassword string
}

// Load 加载配置
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "72"))

	dataDir := getEnv("DATA_DIR", "data")

	appSecret := getEnv("APP_SECRET", "your-secret-key-change-in-production")

	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:       getEnv("APP_ENV", "development"),
		AppSecret: appSecret,
		JWTExpiry: time.Duration(expiryHours) * time.Hour,
		Port:      getEnv("PORT", "5005"),
		SiteName:  getEnv("SITE_NAME", "MovieRec"),

		DataDir:     dataDir,
		CatalogFile: getEnv("CATALOG_FILE", filepath.Join(dataDir, "movie_data.csv")),
		UsersFile:   getEnv("USERS_FILE", filepath.Join(dataDir, "movie_users.csv")),
		RatingsFile: getEnv("RATINGS_FILE", filepath.Join(dataDir, "movie_ratings.csv")),
		PosterDir:   getEnv("POSTER_DIR", filepath.Join(dataDir, "posters")),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin1234"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
