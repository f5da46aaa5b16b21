package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 结构体包含所有应用的配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"` // `mapstructure` 标签用于Viper绑定结构体
	MySQL     MySQLConfig     `mapstructure:"mysql"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	AliyunOSS AliyunOSSConfig `mapstructure:"aliyun_oss"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Link      LinkConfig      `mapstructure:"link"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin 运行模式: debug / release / test
}

// MySQLConfig 数据库配置
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis配置, Addr 为空时不启用 Redis
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

type AliyunOSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"` // 例如: oss-cn-hangzhou.aliyuncs.com
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
}

// MongoConfig GridFS 存储配置
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	BucketName string `mapstructure:"bucket_name"`
}

// RabbitMQConfig RabbitMQ配置, URL 为空时通知在进程内异步发送
type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	SecretKey string        `mapstructure:"secret_key"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
	Issuer    string        `mapstructure:"issuer"`
}

type StorageConfig struct {
	Type string `mapstructure:"type"` // minio / aliyun_oss / gridfs
}

// LinkConfig 打印链接配置
type LinkConfig struct {
	TTLSeconds        int    `mapstructure:"ttl_seconds"`
	FrontendURL       string `mapstructure:"frontend_url"`
	MaxFailedAttempts int    `mapstructure:"max_failed_attempts"` // 0 表示不限制
}

// TTL 返回链接有效期
func (l LinkConfig) TTL() time.Duration {
	return time.Duration(l.TTLSeconds) * time.Second
}

// SMTPConfig 邮件发送配置
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// CacheConfig 文件元数据本地缓存配置
type CacheConfig struct {
	MetadataSize int           `mapstructure:"metadata_size"`
	MetadataTTL  time.Duration `mapstructure:"metadata_ttl"`
}

// zap日志配置
type LogConfig struct {
	OutputPath string `mapstructure:"output_path"`
	ErrorPath  string `mapstructure:"error_path"`
	Level      string `mapstructure:"level"`
}

// legacyEnv 兼容旧版后端使用的环境变量名
var legacyEnv = map[string]string{
	"server.port":      "PORT",
	"mysql.dsn":        "MYSQL_DSN",
	"mongo.uri":        "MONGO_URI",
	"jwt.secret_key":   "JWT_SECRET",
	"link.ttl_seconds": "LINK_TTL_SECONDS",
	"smtp.username":    "SMTP_USER",
	"smtp.password":    "SMTP_PASS",
	"smtp.from":        "FROM_EMAIL",
}

const envPrefix = "SECUREPRINT"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("mysql.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket_name", "secureprint-files")
	v.SetDefault("aliyun_oss.endpoint", "")
	v.SetDefault("aliyun_oss.access_key_id", "")
	v.SetDefault("aliyun_oss.secret_access_key", "")
	v.SetDefault("aliyun_oss.bucket_name", "")
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "secureprint")
	v.SetDefault("mongo.bucket_name", "files")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("jwt.secret_key", "devsecret")
	v.SetDefault("jwt.expires_in", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "go-secureprint")
	v.SetDefault("storage.type", "minio")
	v.SetDefault("link.ttl_seconds", 300)
	v.SetDefault("link.frontend_url", "http://localhost:5173")
	v.SetDefault("link.max_failed_attempts", 0)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("cache.metadata_size", 1024)
	v.SetDefault("cache.metadata_ttl", 10*time.Minute)
	v.SetDefault("log.output_path", "logs/app.log")
	v.SetDefault("log.error_path", "logs/error.log")
	v.SetDefault("log.level", "info")
}

// LoadConfig 加载配置
// 优先级: 环境变量 > 配置文件 > 默认值. 配置文件是可选的
func LoadConfig(configPaths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config") // 配置文件名 (不带扩展名)
	v.SetConfigType("yaml")
	if len(configPaths) == 0 {
		configPaths = []string{".", "./configs", "/etc/go-secureprint/"}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	// 例如：SECUREPRINT_MYSQL_DSN 对应 mysql.dsn
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// 配置文件未找到，不是致命错误，依赖环境变量或默认值
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate 检查启动所必需的配置项
func (c *Config) Validate() error {
	if c.MySQL.DSN == "" {
		return errors.New("mysql.dsn is required (set SECUREPRINT_MYSQL_DSN or MYSQL_DSN)")
	}
	if c.Link.TTLSeconds <= 0 {
		return fmt.Errorf("link.ttl_seconds must be positive, got %d", c.Link.TTLSeconds)
	}
	if c.JWT.SecretKey == "" {
		return errors.New("jwt.secret_key must not be empty")
	}
	switch c.Storage.Type {
	case "minio", "aliyun_oss":
	case "gridfs":
		if c.Mongo.URI == "" {
			return errors.New("mongo.uri is required when storage.type is gridfs")
		}
	default:
		return fmt.Errorf("unknown storage.type %q", c.Storage.Type)
	}
	return nil
}
