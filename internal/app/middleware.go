package app

import (
	httpMW "github.com/crediflow/los-backend/internal/http/middleware"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

type Middleware struct {
	AdminAuth *httpMW.AdminAuth
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	return Middleware{
		AdminAuth: httpMW.NewAdminAuth(log, cfg.AdminAPIToken),
	}
}
