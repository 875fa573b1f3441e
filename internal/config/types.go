package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int             `yaml:"port"`
	Env            string          `yaml:"env"` // "development" | "production"
	DSN            string          `yaml:"dsn"` // MySQL DSN; overrides Database when set
	Database       DatabaseConfig  `yaml:"database"`
	RedisURL       string          `yaml:"redis_url"`
	JWTSecret      string          `yaml:"jwt_secret"`
	Timezone       string          `yaml:"timezone"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	Paths          PathsConfig     `yaml:"paths"`
	AI             AIConfig        `yaml:"ai"`
	Analytics      AnalyticsConfig `yaml:"analytics"`
	Backup         BackupConfig    `yaml:"backup"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	Loc      string `yaml:"loc"`
}

type PathsConfig struct {
	Static  string `yaml:"static"`
	Backups string `yaml:"backups"`
}

// AIConfig lists the language-model providers available to the AI
// assistance endpoints. The first enabled provider is the default.
type AIConfig struct {
	Providers []AIProvider `yaml:"providers"`
}

type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // OpenAI | OpenAI-Compatible | Anthropic
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// AnalyticsConfig configures the Google Analytics Data API reporting
// integration. CredentialsJSON is the service-account key as a JSON
// string.
type AnalyticsConfig struct {
	PropertyID      string `yaml:"property_id"`
	CredentialsJSON string `yaml:"credentials_json"`
}

type BackupConfig struct {
	Enable bool      `yaml:"enable"`
	S3     S3Options `yaml:"s3"`
}

type S3Options struct {
	Enable          bool   `yaml:"enable"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	PathStyleAccess bool   `yaml:"path_style_access"`
}
