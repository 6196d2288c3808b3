package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Alvys    AlvysConfig    `mapstructure:"alvys"`
	Export   ExportConfig   `mapstructure:"export"`
	Blob     BlobConfig     `mapstructure:"blob"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	Path            string        `mapstructure:"path"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the PostgreSQL connection string. SQLite uses Path directly.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type AlvysConfig struct {
	APIBase    string        `mapstructure:"api_base"`
	APIVersion string        `mapstructure:"api_version"`
	PageSize   int           `mapstructure:"page_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type ExportConfig struct {
	DataDir  string `mapstructure:"data_dir"`
	WeeksAgo int    `mapstructure:"weeks_ago"`
}

type BlobConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

type AlertsConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "alvys")
	v.SetDefault("database.name", "alvys")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.path", "./data/alvys.db")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("alvys.api_base", "https://integrations.alvys.com/api")
	v.SetDefault("alvys.api_version", "1")
	v.SetDefault("alvys.page_size", 200)
	v.SetDefault("alvys.timeout", 60*time.Second)
	v.SetDefault("export.data_dir", "./alvys_weekly_data")
	v.SetDefault("export.weeks_ago", 0)
	v.SetDefault("blob.use_ssl", true)
	v.SetDefault("blob.bucket", "alvys-weekly-json")
	v.SetDefault("blob.region", "us-east-1")
	v.SetDefault("alerts.timeout", 10*time.Second)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.host", "ALVYS_DB_HOST")
	v.BindEnv("database.password", "ALVYS_DB_PASSWORD")
	v.BindEnv("database.user", "ALVYS_DB_USER")
	v.BindEnv("database.name", "ALVYS_DB_NAME")
	v.BindEnv("blob.endpoint", "ALVYS_BLOB_ENDPOINT")
	v.BindEnv("blob.access_key", "ALVYS_BLOB_ACCESS_KEY")
	v.BindEnv("blob.secret_key", "ALVYS_BLOB_SECRET_KEY")
	v.BindEnv("blob.bucket", "ALVYS_BLOB_PATH")
	v.BindEnv("alerts.endpoint", "LOGIC_APP_ENDPOINT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
