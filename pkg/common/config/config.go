package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 支持的存储驱动
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type ServerConfig struct {
	Address string `json:"address" yaml:"address"`
}

type SecurityConfig struct {
	MaxBodySize    int64    `json:"maxBodySize" yaml:"maxBodySize"` // 单位：字节
	AllowedMethods []string `json:"allowedMethods" yaml:"allowedMethods"`
	BcryptCost     int      `json:"bcryptCost" yaml:"bcryptCost"`
}

type TimeoutConfig struct {
	RequestTimeout int `json:"requestTimeout" yaml:"requestTimeout"` // 单位：秒
}

type CORSConfig struct {
	AllowOrigins     []string      `json:"allowOrigins" yaml:"allowOrigins"`
	AllowMethods     []string      `json:"allowMethods" yaml:"allowMethods"`
	AllowHeaders     []string      `json:"allowHeaders" yaml:"allowHeaders"`
	ExposeHeaders    []string      `json:"exposeHeaders" yaml:"exposeHeaders"`
	AllowCredentials bool          `json:"allowCredentials" yaml:"allowCredentials"`
	MaxAge           time.Duration `json:"maxAge" yaml:"maxAge"`
	TrustedDomains   []string      `json:"trustedDomains" yaml:"trustedDomains"`
}

type JWTAuthConfig struct {
	Secret         string        `json:"secret" yaml:"secret"`
	ExpireDuration time.Duration `json:"expireDuration" yaml:"expireDuration"`
	Issuer         string        `json:"issuer" yaml:"issuer"`
	SigningMethod  string        `json:"signingMethod" yaml:"signingMethod"`
	Realm          string        `json:"realm" yaml:"realm"` // JWT领域标识
	CookieName     string        `json:"cookieName" yaml:"cookieName"`
	CookieSecure   bool          `json:"cookieSecure" yaml:"cookieSecure"`
	CookieSameSite string        `json:"cookieSameSite" yaml:"cookieSameSite"` // lax | strict | none
}

type RateLimitConfig struct {
	Rate     int           `json:"rate" yaml:"rate"`
	Interval time.Duration `json:"interval" yaml:"interval"`
}

type MiddlewareConfig struct {
	Security  SecurityConfig  `json:"security" yaml:"security"`
	JWT       JWTAuthConfig   `json:"jwt" yaml:"jwt"`
	Timeout   TimeoutConfig   `json:"timeout" yaml:"timeout"`
	CORS      CORSConfig      `json:"cors" yaml:"cors"`
	RateLimit RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`
}

type MongoConfig struct {
	URI            string        `json:"uri" yaml:"uri"`
	Database       string        `json:"database" yaml:"database"`
	ConnectTimeout time.Duration `json:"connectTimeout" yaml:"connectTimeout"`
}

// DatabaseConfig Driver 决定使用的存储后端，MySQL 字段只在 driver=mysql 时生效
type DatabaseConfig struct {
	Driver      string      `json:"driver" yaml:"driver"`
	Mongo       MongoConfig `json:"mongo" yaml:"mongo"`
	Host        string      `json:"host" yaml:"host"`               // 数据库主机地址
	Port        int         `json:"port" yaml:"port"`               // 数据库端口
	Username    string      `json:"username" yaml:"username"`       // 数据库用户名
	Password    string      `json:"password" yaml:"password"`       // 数据库密码
	DBName      string      `json:"dbname" yaml:"dbname"`           // 数据库名称
	UseUnixSock bool        `json:"useUnixSock" yaml:"useUnixSock"` // 是否使用Unix套接字连接
	MinPoolSize int         `json:"minPoolSize" yaml:"minPoolSize"` // 连接池最小连接数
	MaxPoolSize int         `json:"maxPoolSize" yaml:"maxPoolSize"` // 连接池最大连接数
	LogLevel    string      `json:"logLevel" yaml:"logLevel"`       // GORM日志级别
}

type UploadConfig struct {
	Dir       string `json:"dir" yaml:"dir"`
	URLPrefix string `json:"urlPrefix" yaml:"urlPrefix"`
	MaxFiles  int    `json:"maxFiles" yaml:"maxFiles"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Address string `json:"address" yaml:"address"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Database   DatabaseConfig   `json:"database" yaml:"database"`
	Middleware MiddlewareConfig `json:"middleware" yaml:"middleware"`
	Upload     UploadConfig     `json:"upload" yaml:"upload"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Env        string           `json:"env" yaml:"env"` // 环境标识
}

// DefaultClientOrigin 未配置 CLIENT_SIDE_URL 时允许的前端来源
const DefaultClientOrigin = "http://localhost:3000"

// Default 返回一份默认配置的副本
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address: ":4000",
		},
		Database: DatabaseConfig{
			Driver: DriverMongo,
			Mongo: MongoConfig{
				URI:            "mongodb://localhost:27017",
				Database:       "staybook",
				ConnectTimeout: 10 * time.Second,
			},
			Host:        "localhost",
			Port:        3306,
			Username:    "root",
			Password:    "root",
			DBName:      "staybook",
			MinPoolSize: 5,
			MaxPoolSize: 50,
			LogLevel:    "warn",
		},
		Middleware: MiddlewareConfig{
			Security: SecurityConfig{
				MaxBodySize:    64 << 20, // 64MB，照片批量上传
				AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS", "HEAD"},
				BcryptCost:     10,
			},
			JWT: JWTAuthConfig{
				Secret:         "", // 必须由 JWT_SECRET 或配置文件提供
				ExpireDuration: 24 * time.Hour,
				Issuer:         "staybook",
				SigningMethod:  "HS256",
				Realm:          "staybook",
				CookieName:     "token",
				CookieSameSite: "lax",
			},
			Timeout: TimeoutConfig{
				RequestTimeout: 15,
			},
			CORS: CORSConfig{
				AllowOrigins:     []string{DefaultClientOrigin},
				AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
				AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With"},
				ExposeHeaders:    []string{"Content-Length"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			},
			RateLimit: RateLimitConfig{
				Rate:     20,
				Interval: time.Second,
			},
		},
		Upload: UploadConfig{
			Dir:       "uploads",
			URLPrefix: "/uploads",
			MaxFiles:  100,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9090",
		},
		Log: LogConfig{
			Level: "info",
		},
		Env: "development",
	}
}

// IsProd 判断当前是否生产环境
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// RequestTimeout 单个请求的截止时长
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Middleware.Timeout.RequestTimeout) * time.Second
}

// ErrMissingJWTSecret 未提供令牌签名密钥
var ErrMissingJWTSecret = errors.New("jwt secret is required: set JWT_SECRET or middleware.jwt.secret")

// Load 加载配置（优先级：环境变量 > 配置文件 > 默认值）
func Load() (*Config, error) {
	config := Default()

	// 0. 存在 .env 时先载入，不存在不算错误
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		hlog.Warnf("Failed to load .env file: %v", err)
	}

	// 1. 尝试从配置文件加载
	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(&config, configPath); err != nil {
			hlog.Warnf("Failed to load config file: %v", err)
		}
	}

	// 2. 从环境变量覆盖
	loadFromEnv(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate 启动前校验必须由外部提供的配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Middleware.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	// 优先使用环境变量指定的配置文件路径
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	// 依次查找可能的配置文件位置
	searchPaths := []string{
		"./config.yaml",
		"./config.json",
		"../config.json",
		"/etc/staybook/config.yaml",
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadFromFile 从文件加载配置，按扩展名区分 YAML 与 JSON
func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	default:
		return json.Unmarshal(data, config)
	}
}

// loadFromEnv 从环境变量加载配置
func loadFromEnv(config *Config) {
	// 服务器配置，PORT 与原部署方式保持一致
	if v := os.Getenv("PORT"); v != "" {
		config.Server.Address = ":" + v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		config.Server.Address = v
	}

	// 环境配置
	if v := os.Getenv("APP_ENV"); v != "" {
		config.Env = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Log.Level = strings.ToLower(v)
	}

	// 中间件配置
	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Middleware.Security.MaxBodySize = size
		}
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil {
			config.Middleware.Security.BcryptCost = cost
		}
	}

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			config.Middleware.Timeout.RequestTimeout = timeout
		}
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if rate, err := strconv.Atoi(v); err == nil {
			config.Middleware.RateLimit.Rate = rate
		}
	}

	// 前端地址，同时作为 CORS 允许来源
	if v := os.Getenv("CLIENT_SIDE_URL"); v != "" {
		config.Middleware.CORS.AllowOrigins = splitEnvList(v)
	}

	if v := os.Getenv("CORS_TRUSTED_DOMAINS"); v != "" {
		config.Middleware.CORS.TrustedDomains = splitEnvList(v)
	}

	/****** JWT 配置 ******/
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Middleware.JWT.Secret = v
	}

	if v := os.Getenv("JWT_EXPIRATION"); v != "" {
		if duration, err := time.ParseDuration(v); err == nil {
			config.Middleware.JWT.ExpireDuration = duration
		} else {
			hlog.Warnf("Invalid JWT_EXPIRATION format: %v", err)
		}
	}

	if v := os.Getenv("JWT_ISSUER"); v != "" {
		config.Middleware.JWT.Issuer = v
	}

	if v := os.Getenv("JWT_ALGORITHM"); v != "" {
		// 清理输入算法字符串中的空格
		algorithm := strings.ToLower(strings.ReplaceAll(v, " ", ""))

		// 允许的算法列表
		validAlgorithms := map[string]bool{
			"hs256": true,
			"hs384": true,
			"hs512": true,
		}

		if validAlgorithms[algorithm] {
			config.Middleware.JWT.SigningMethod = strings.ToUpper(algorithm)
		} else {
			hlog.Warnf("Unsupported JWT algorithm: %s", v)
		}
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		config.Middleware.JWT.CookieSecure = parseBool(v)
	}

	if v := os.Getenv("COOKIE_SAMESITE"); v != "" {
		config.Middleware.JWT.CookieSameSite = strings.ToLower(v)
	}

	// 上传目录
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		config.Upload.Dir = v
	}

	// 监控
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		config.Metrics.Enabled = parseBool(v)
	}

	if v := os.Getenv("METRICS_ADDR"); v != "" {
		config.Metrics.Address = v
	}

	// 数据库配置
	if v := os.Getenv("DB_DRIVER"); v != "" {
		config.Database.Driver = strings.ToLower(v)
	}

	if v := os.Getenv("MONGO_URL"); v != "" {
		config.Database.Mongo.URI = v
	}

	if v := os.Getenv("MONGO_DB"); v != "" {
		config.Database.Mongo.Database = v
	}

	if v := os.Getenv("DB_HOST"); v != "" {
		config.Database.Host = v
	}

	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}

	if v := os.Getenv("DB_USER"); v != "" {
		config.Database.Username = v
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}

	if v := os.Getenv("DB_NAME"); v != "" {
		config.Database.DBName = v
	}

	if v := os.Getenv("DB_SOCKET"); v != "" {
		config.Database.UseUnixSock = parseBool(v)
	}

	if v := os.Getenv("DB_MIN_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MinPoolSize = size
		}
	}

	if v := os.Getenv("DB_MAX_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MaxPoolSize = size
		}
	}

	if v := os.Getenv("DB_LOG_LEVEL"); v != "" {
		config.Database.LogLevel = strings.ToLower(v)
	}
}

// 分割环境变量列表（支持逗号分隔的字符串）
func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// 转换字符串为布尔值
func parseBool(value string) bool {
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

// HlogLevel 将配置的日志级别转换为 hlog.Level
func (c *Config) HlogLevel() hlog.Level {
	switch c.Log.Level {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "warn":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}

func (c *Config) InitDB() (*gorm.DB, error) {
	var dsn string
	charsetParam := "charset=utf8mb4&parseTime=True&loc=Local"

	// 自动切换连接方式
	if c.Database.UseUnixSock {
		dsn = fmt.Sprintf("%s:%s@unix(%s)/%s?%s",
			c.Database.Username,
			c.Database.Password,
			c.Database.Host, // 这里host存储的是socket路径
			c.Database.DBName,
			charsetParam)
	} else {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			c.Database.Username,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.DBName,
			charsetParam)
	}

	// 配置GORM日志级别
	gormConfig := &gorm.Config{TranslateError: true}
	switch c.Database.LogLevel {
	case "silent":
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	case "error":
		gormConfig.Logger = logger.Default.LogMode(logger.Error)
	case "warn":
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	case "info":
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(c.Database.MinPoolSize)
	sqlDB.SetMaxOpenConns(c.Database.MaxPoolSize)

	return db, nil
}

// InitMongo 建立 MongoDB 连接并校验可达性
func (c *Config) InitMongo(ctx context.Context) (*mongo.Client, error) {
	timeout := c.Database.Mongo.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(c.Database.Mongo.URI).
		SetMinPoolSize(uint64(c.Database.MinPoolSize)).
		SetMaxPoolSize(uint64(c.Database.MaxPoolSize))

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}
