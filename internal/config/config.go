package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 2440
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBName     = "gwd_cms"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultRedisURL   = "redis://localhost:6379/0"
	defaultStaticDir  = "static"
	defaultBackupsDir = "backups"
)

// Load reads the YAML config file and applies defaults and environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("GWD_DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("GWD_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("GWD_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("GWD_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("GA_PROPERTY_ID"); v != "" {
		cfg.Analytics.PropertyID = v
	}
	if v := os.Getenv("GA_CREDENTIALS_JSON"); v != "" {
		cfg.Analytics.CredentialsJSON = v
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = defaultRedisURL
	}
	if cfg.Paths.Static == "" {
		cfg.Paths.Static = defaultStaticDir
	}
	if cfg.Paths.Backups == "" {
		cfg.Paths.Backups = defaultBackupsDir
	}
	if cfg.DSN == "" {
		cfg.DSN = buildDSN(cfg.Database)
	}
}

// buildDSN assembles a MySQL DSN from discrete database settings.
func buildDSN(db DatabaseConfig) string {
	host := db.Host
	if host == "" {
		host = defaultDBHost
	}
	port := db.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := db.User
	if user == "" {
		user = defaultDBUser
	}
	name := db.Name
	if name == "" {
		name = defaultDBName
	}
	charset := db.Charset
	if charset == "" {
		charset = defaultDBCharset
	}
	loc := db.Loc
	if loc == "" {
		loc = defaultDBLoc
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=%s",
		user, db.Password, host, port, name, charset, loc)
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.ToLower(strings.TrimSpace(c.Env)) != "production"
}
