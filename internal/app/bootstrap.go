package app

import (
	"os"

	"github.com/google/uuid"
	"github.com/gwd-cms/core/internal/modules/access/role"
	"github.com/gwd-cms/core/internal/modules/access/user"
	"go.uber.org/zap"
)

// bootstrap seeds the built-in roles and, on a fresh install, creates
// the first admin account. Credentials come from GWD_ADMIN_EMAIL and
// GWD_ADMIN_PASSWORD; a password is generated and logged when unset.
func (a *App) bootstrap(roles *role.Service, users *user.Service) {
	if err := roles.SeedDefaults(); err != nil {
		a.logger.Warn("seeding default roles failed", zap.Error(err))
	}

	count, err := users.Count()
	if err != nil {
		a.logger.Warn("counting users failed", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	email := os.Getenv("GWD_ADMIN_EMAIL")
	if email == "" {
		email = "admin@localhost"
	}
	password := os.Getenv("GWD_ADMIN_PASSWORD")
	generated := password == ""
	if generated {
		password = uuid.NewString()
	}

	if _, err := users.CreateInitialAdmin("Admin", email, password); err != nil {
		a.logger.Warn("creating initial admin failed", zap.Error(err))
		return
	}
	if generated {
		a.logger.Info("initial admin created",
			zap.String("email", email),
			zap.String("password", password))
	} else {
		a.logger.Info("initial admin created", zap.String("email", email))
	}
}
