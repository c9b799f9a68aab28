package app

import (
	"github.com/crediflow/los-backend/internal/pkg/logger"
	"github.com/crediflow/los-backend/internal/utils"
)

type Config struct {
	AdminAPIToken string
	RedisEnabled  bool
}

func LoadConfig(log *logger.Logger) Config {
	adminAPIToken := utils.GetEnv("ADMIN_API_TOKEN", "", log)
	redisEnabled := utils.GetEnv("REDIS_ADDR", "", log) != ""
	return Config{
		AdminAPIToken: adminAPIToken,
		RedisEnabled:  redisEnabled,
	}
}
