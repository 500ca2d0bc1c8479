package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Cron      CronConfig      `mapstructure:"cron"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	PaaS      PaaSConfig      `mapstructure:"paas"`
	SearchAd  SearchAdConfig  `mapstructure:"searchad"`
	Bidder    BidderConfig    `mapstructure:"bidder"`
	Expansion ExpansionConfig `mapstructure:"expansion"`
	Audit     AuditConfig     `mapstructure:"audit"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`

	// File enables a rotated log file next to stdout.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	AuditRetention string `mapstructure:"audit_retention"`
	AutoBid        string `mapstructure:"autobid"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	Disabled  bool   `mapstructure:"disabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type PaaSConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Agent   string `mapstructure:"agent"`
}

type SearchAdConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	SecretKey  string        `mapstructure:"secret_key"`
	CustomerID string        `mapstructure:"customer_id"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
	// Concurrency bounds per-item fan-out of bulk updates and creates.
	Concurrency int `mapstructure:"concurrency"`
}

type BidderConfig struct {
	TargetRank          int    `mapstructure:"target_rank"`
	RankedMaxBid        int    `mapstructure:"ranked_max_bid"`
	ProbeMaxBid         int    `mapstructure:"probe_max_bid"`
	BidStep             int    `mapstructure:"bid_step"`
	MinImpressions      *int64 `mapstructure:"min_impressions"` // nil keeps the default, 0 disables the low-data freeze
	LoopIntervalMinutes int    `mapstructure:"loop_interval_minutes"`
	TargetDevice        string `mapstructure:"target_device"`
	ClampProbe          bool   `mapstructure:"clamp_probe"`

	StepDelay     time.Duration `mapstructure:"step_delay"`
	CampaignDelay time.Duration `mapstructure:"campaign_delay"`
	SniperDelay   time.Duration `mapstructure:"sniper_delay"`
	SkipDelay     time.Duration `mapstructure:"skip_delay"`
	BatchSize     int           `mapstructure:"batch_size"`
	RecentSize    int           `mapstructure:"recent_size"`
	RecheckStatus bool          `mapstructure:"recheck_status"`
	LeaseTTL      time.Duration `mapstructure:"lease_ttl"`
}

type ExpansionConfig struct {
	GroupKeywordCeiling int `mapstructure:"group_keyword_ceiling"`
	CreateChunkSize     int `mapstructure:"create_chunk_size"`
}

type AuditConfig struct {
	RetentionDays int `mapstructure:"retention_days"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "Asia/Seoul")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.audit_retention", "0 30 3 * * *")
	v.SetDefault("cron.autobid", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.disabled", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("paas.agent", "searchad-bidder")
	v.SetDefault("searchad.base_url", "https://api.searchad.naver.com")
	v.SetDefault("searchad.timeout", "30s")
	v.SetDefault("searchad.retry_count", 3)
	v.SetDefault("searchad.concurrency", 5)

	v.SetDefault("bidder.target_rank", 3)
	v.SetDefault("bidder.ranked_max_bid", 30000)
	v.SetDefault("bidder.probe_max_bid", 7000)
	v.SetDefault("bidder.bid_step", 1000)
	v.SetDefault("bidder.min_impressions", 30)
	v.SetDefault("bidder.loop_interval_minutes", 10)
	v.SetDefault("bidder.target_device", "MOBILE")
	v.SetDefault("bidder.clamp_probe", true)
	v.SetDefault("bidder.step_delay", "100ms")
	v.SetDefault("bidder.campaign_delay", "500ms")
	v.SetDefault("bidder.sniper_delay", "100ms")
	v.SetDefault("bidder.skip_delay", "200ms")
	v.SetDefault("bidder.batch_size", 50)
	v.SetDefault("bidder.recent_size", 50)
	v.SetDefault("bidder.recheck_status", true)
	v.SetDefault("bidder.lease_ttl", "2m")

	v.SetDefault("expansion.group_keyword_ceiling", 1000)
	v.SetDefault("expansion.create_chunk_size", 100)
	v.SetDefault("audit.retention_days", 90)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
