package database

import (
	"fmt"
	"time"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/internal/pkg/env"
	"github.com/ManuelReschke/TaskFox/internal/pkg/logging"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// DB is the process-wide connection opened by SetupDatabase.
var DB *gorm.DB

// GetDB returns the shared connection.
func GetDB() *gorm.DB {
	return DB
}

// Models lists every table TaskFox owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserSettings{},
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
		&models.Team{},
		&models.TeamMember{},
		&models.Todo{},
		&models.BillingWebhookEvent{},
		&models.BillingReconciliationItem{},
	}
}

func SetupDatabase() {
	var err error
	log := logging.Logger()
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=UTC"
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{})
		if err == nil {
			if env.GetBool("DB_AUTO_MIGRATE", true) {
				if err = DB.AutoMigrate(Models()...); err != nil {
					log.WithError(err).Error("auto migration failed")
				}
			}
			return
		}

		log.WithError(err).Warnf("Failed to connect to database (try %d/%d)", i+1, maxRetries)
		if i < maxRetries-1 {
			log.Infof("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}
