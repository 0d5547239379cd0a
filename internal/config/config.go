package config

type Config interface {
	EnvConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetAPIBaseURL() string
}

type StorageConfig interface {
	GetRedisAddr() string
	GetCustomerDBPath() string
}

type mainConfig struct {
	EnvVars
	Storage
}

func New() Config {
	return mainConfig{}
}
