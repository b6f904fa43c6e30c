package config

import "os"

type AppConfig struct {
	DebugMode      bool
	HubConfig      *HubConfig
	ModelConfig    *ModelConfig
	PresenceSvcCfg *PresenceSvcCfg
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	JwtConfig      *JwtConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		HubConfig:      NewHubConfig(),
		ModelConfig:    NewModelConfig(),
		PresenceSvcCfg: NewPresenceSvcCfg(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		JwtConfig:      NewJwtConfig(),
	}
}
