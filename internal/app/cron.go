package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gwd-cms/core/internal/models"
	"github.com/gwd-cms/core/internal/modules/storage/backup"
	"github.com/gwd-cms/core/internal/modules/system/audit"
	pkgcron "github.com/gwd-cms/core/internal/pkg/cron"
	"go.uber.org/zap"
)

const auditRetention = 180 * 24 * time.Hour

// registerCronJobs registers all scheduled background jobs.
func (a *App) registerCronJobs() {
	db := a.db
	log := a.logger.Named("cron")

	a.sched.Register(pkgcron.Job{
		Name:        "cleanup_sessions",
		Description: "Remove expired and revoked login sessions",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			result := db.WithContext(ctx).
				Where("expires_at < ? OR revoked_at IS NOT NULL", time.Now()).
				Delete(&models.UserSession{})
			if result.Error != nil {
				log.Warn("session cleanup failed", zap.Error(result.Error))
				return result.Error
			}
			if result.RowsAffected > 0 {
				log.Info(fmt.Sprintf("removed %d stale sessions", result.RowsAffected))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "cleanup_audit_logs",
		Description: "Remove audit log entries past the retention window",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().Add(-auditRetention)
			result := db.WithContext(ctx).
				Where("created_at < ?", cutoff).
				Delete(&models.AuditLogModel{})
			if result.Error != nil {
				log.Warn("audit log cleanup failed", zap.Error(result.Error))
				return result.Error
			}
			return nil
		},
	})

	if a.cfg.Backup.Enable {
		auditSvc := audit.NewService(db, a.logger)
		backupSvc := backup.NewService(db, a.cfg, auditSvc, a.logger)
		a.sched.Register(pkgcron.Job{
			Name:        "auto_backup",
			Description: "Export the content database to a local archive",
			Interval:    24 * time.Hour,
			Fn: func(ctx context.Context) error {
				name, err := backupSvc.Run(ctx, audit.Actor{})
				if err != nil {
					log.Warn("scheduled backup failed", zap.Error(err))
					return err
				}
				log.Info("scheduled backup written", zap.String("archive", name))
				return nil
			},
		})
	}
}
