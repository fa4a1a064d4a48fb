package app

import (
	"strings"
	"time"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/utils"
)

type Config struct {
	ServiceName     string
	Environment     string
	Version         string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	// AdminEmail is recognized as admin on every sign-in regardless of the
	// whitelist.
	AdminEmail     string
	AllowedOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	adminEmail := utils.GetEnv("ADMIN_EMAIL", "", log)
	origins := strings.Split(utils.GetEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173", log), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		ServiceName:     utils.GetEnv("SERVICE_NAME", "fluxclass", log),
		Environment:     utils.GetEnv("ENVIRONMENT", "development", log),
		Version:         utils.GetEnv("SERVICE_VERSION", "dev", log),
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
		AdminEmail:      adminEmail,
		AllowedOrigins:  origins,
	}
}
