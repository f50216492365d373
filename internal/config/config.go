package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	Port        int      `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // sqlite / postgres
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`

	// VerifySecret signs certificate verification codes; falls back to jwt.secret.
	VerifySecret string `mapstructure:"verify_secret"`
}

type LogConfig struct {
	File    string `mapstructure:"file"`
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

type UploadsConfig struct {
	Driver    string `mapstructure:"driver"` // local / oss
	Dir       string `mapstructure:"dir"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`

	// MaxImagePx bounds the longer side of uploaded JPEG/PNG images; 0 keeps them as sent.
	MaxImagePx int `mapstructure:"max_image_px"`

	OSS OSSConfig `mapstructure:"oss"`
}

type AppSubConfig struct {
	PageSize         int    `mapstructure:"page_size"`
	SeedDefaultBatch bool   `mapstructure:"seed_default_batch"`
	InstituteName    string `mapstructure:"institute_name"`
	InstituteAddress string `mapstructure:"institute_address"`
	InstitutePhone   string `mapstructure:"institute_phone"`

	// PublicURL is the externally reachable base URL printed in certificate QR codes.
	PublicURL string `mapstructure:"public_url"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	App      AppSubConfig   `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/saha.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_mode", false)
	// keys without a default are invisible to AutomaticEnv during Unmarshal
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "saha-erp")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.verify_secret", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("uploads.driver", "local")
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_size_mb", 10)
	v.SetDefault("uploads.max_image_px", 1600)
	v.SetDefault("uploads.oss.endpoint", "")
	v.SetDefault("uploads.oss.access_key_id", "")
	v.SetDefault("uploads.oss.access_key_secret", "")
	v.SetDefault("uploads.oss.bucket", "")
	v.SetDefault("uploads.oss.prefix", "")
	v.SetDefault("app.page_size", 20)
	v.SetDefault("app.seed_default_batch", true)
	v.SetDefault("app.institute_name", "Saha Institute")
	v.SetDefault("app.institute_address", "")
	v.SetDefault("app.institute_phone", "")
	v.SetDefault("app.public_url", "")
}

// Load loads configuration from the given file path (e.g. "config.yaml").
// A missing file is not an error: defaults and environment variables still apply.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		appConfig, err = read(path)
	})
	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

func read(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. SAHA_SERVER_PORT=9000
	v.SetEnvPrefix("SAHA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.JWT.Secret == "" {
		return nil, errors.New("jwt.secret must be set")
	}
	if c.Security.VerifySecret == "" {
		c.Security.VerifySecret = c.JWT.Secret
	}
	return &c, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
