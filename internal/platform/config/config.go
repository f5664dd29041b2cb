// Package config carga la configuración desde .env, archivo YAML opcional y env.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"vet-records/internal/adapters/storage"
	"vet-records/internal/ports/store"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	Log     LogConfig     `mapstructure:"log"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DBConfig struct {
	Driver         string `mapstructure:"driver"`
	DSN            string `mapstructure:"dsn"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	// DevMode: sin verificador; identidad vía X-Debug-User-ID / X-Debug-Role.
	DevMode bool `mapstructure:"dev_mode"`
}

type TracingConfig struct {
	// Exporter: none | stdout
	Exporter   string  `mapstructure:"exporter"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

func Defaults() Config {
	return Config{
		App:     AppConfig{Name: "vet-records"},
		HTTP:    HTTPConfig{Addr: ":8080"},
		DB:      DBConfig{Driver: store.DriverSQLite, DSN: "vet-records.db", MigrateOnStart: true, MaxOpenConns: 10},
		Log:     LogConfig{Level: "info", Format: "text"},
		Auth:    AuthConfig{Issuer: "vet-records", DevMode: true},
		Tracing: TracingConfig{Exporter: "none", SampleRate: 1.0},
	}
}

// aliases de env al estilo de la app original (PORT, DB_DSN, LOG_LEVEL...).
var envAliases = map[string][]string{
	"http.addr":       {"VET_HTTP_ADDR", "PORT"},
	"db.driver":       {"VET_DB_DRIVER", "DB_DRIVER"},
	"db.dsn":          {"VET_DB_DSN", "DB_DSN"},
	"log.level":       {"VET_LOG_LEVEL", "LOG_LEVEL"},
	"log.format":      {"VET_LOG_FORMAT", "LOG_FORMAT"},
	"app.name":        {"VET_APP_NAME", "APP_NAME"},
	"auth.jwt_secret": {"VET_AUTH_JWT_SECRET", "JWT_SECRET"},
}

// Load lee .env (si existe), luego cfgFile (si viene) y por último el entorno.
func Load(cfgFile string) (Config, error) {
	// .env es opcional
	_ = godotenv.Load()

	v := viper.New()
	d := Defaults()
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("db.driver", d.DB.Driver)
	v.SetDefault("db.dsn", d.DB.DSN)
	v.SetDefault("db.migrate_on_start", d.DB.MigrateOnStart)
	v.SetDefault("db.max_open_conns", d.DB.MaxOpenConns)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", d.Auth.Issuer)
	v.SetDefault("auth.dev_mode", d.Auth.DevMode)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return Config{}, fmt.Errorf("read config %s: %w", cfgFile, err)
			}
		}
	}

	v.SetEnvPrefix("VET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envAliases {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

func (c *Config) normalize() {
	c.DB.Driver = storage.Normalize(c.DB.Driver)
	// PORT=8080 -> ":8080"
	if addr := strings.TrimSpace(c.HTTP.Addr); addr != "" && !strings.Contains(addr, ":") {
		c.HTTP.Addr = ":" + addr
	}
	c.Tracing.Exporter = strings.ToLower(strings.TrimSpace(c.Tracing.Exporter))
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case store.DriverPostgres, store.DriverSQLite:
	default:
		return fmt.Errorf("config: unknown db.driver %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("config: db.dsn is required")
	}
	if !c.Auth.DevMode && strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("config: auth.jwt_secret is required unless auth.dev_mode is set")
	}
	switch c.Tracing.Exporter {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("config: unsupported tracing.exporter %q", c.Tracing.Exporter)
	}
	return nil
}
