package config

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	SigningKey      string `yaml:"signing_key"`
	Issuer          string `yaml:"issuer"`
	Audience        string `yaml:"audience"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

// RefreshTokenConfig задаёт параметры фоновой архивации отозванных refresh-токенов
type RefreshTokenConfig struct {
	ArchiveRetention string `yaml:"archive_retention"`
	SweepInterval    string `yaml:"sweep_interval"`
}

type NewsConfig struct {
	CacheTTL string `yaml:"cache_ttl"`
	Limit    int    `yaml:"limit"`
}

type AccountsConfig struct {
	MaxPerUser int `yaml:"max_per_user"`
}
