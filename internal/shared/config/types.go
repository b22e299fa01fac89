package config

import "fmt"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type EmailConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	BaseURL     string `mapstructure:"base_url"`
}

type ProvisioningConfig struct {
	// CommitTimeoutSeconds bounds a single workflow commit attempt before it
	// is surfaced as a transient failure.
	CommitTimeoutSeconds int  `mapstructure:"commit_timeout_seconds"`
	SendInviteEmail      bool `mapstructure:"send_invite_email"`
}

type BillingConfig struct {
	// PlanCatalogPath overrides the embedded plan catalog when set.
	PlanCatalogPath string `mapstructure:"plan_catalog_path"`
	// EntitlementCacheTTLMinutes is the base TTL for cached entitlement
	// snapshots; a jitter is added on top to avoid stampedes.
	EntitlementCacheTTLMinutes int `mapstructure:"entitlement_cache_ttl_minutes"`
}
