package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"teamboard/internal/config"
	"teamboard/internal/models"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// 加载配置
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	cfg := config.Load()
	if cfg.Database.Host == "" {
		cfg = config.GetDefaultConfig()
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			cfg.Database.Host, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.Port)
	}

	// 连接数据库
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Starting database migration...")

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Board{},
		&models.List{},
		&models.Card{},
		&models.Task{},
		&models.Tag{},
		&models.CardComment{},
		&models.CardAttachment{},
		&models.Notification{},
		&models.CalendarEvent{},
		&models.AuditLog{},
		&models.AutomationRule{},
		&models.AutomationTrigger{},
		&models.AutomationAction{},
		&models.AutomationRun{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migration completed successfully!")

	// 创建索引
	log.Println("Creating additional indexes...")

	// 卡片表复合索引
	db.Exec("CREATE INDEX IF NOT EXISTS idx_cards_list_created ON cards(list_id, created_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_cards_assignee ON cards(assignee_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_cards_due_date ON cards(due_date)")

	// 规则表索引
	db.Exec("CREATE INDEX IF NOT EXISTS idx_automation_rules_workspace ON automation_rules(workspace_id, active)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_automation_runs_rule_created ON automation_runs(rule_id, created_at)")

	// 通知与审计索引
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, read)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_logs_workspace_created ON audit_logs(workspace_id, created_at)")

	log.Println("Additional indexes created successfully!")

	// 插入默认数据
	if len(os.Args) > 1 && os.Args[1] == "--seed" {
		log.Println("Seeding default data...")
		seedDefaultData(db)
		log.Println("Default data seeded successfully!")
	}

	log.Println("Migration process completed!")
}

func seedDefaultData(db *gorm.DB) {
	// 创建默认管理员用户
	var adminUser models.User
	if err := db.Where("username = ?", "admin").First(&adminUser).Error; err != nil {
		adminUser = models.User{
			Username: "admin",
			Email:    "admin@teamboard.local",
			Name:     "系统管理员",
		}
		db.Create(&adminUser)
		log.Println("Created default admin user")
	}

	// 创建默认工作区与看板
	var ws models.Workspace
	if err := db.Where("name = ?", "Default Workspace").First(&ws).Error; err != nil {
		ws = models.Workspace{
			Name:    "Default Workspace",
			OwnerID: adminUser.ID,
		}
		db.Create(&ws)
		log.Println("Created default workspace")
	}

	var board models.Board
	if err := db.Where("workspace_id = ? AND title = ?", ws.ID, "Getting Started").First(&board).Error; err != nil {
		board = models.Board{
			WorkspaceID: ws.ID,
			Title:       "Getting Started",
		}
		db.Create(&board)
		for i, title := range []string{"To Do", "In Progress", "Done"} {
			db.Create(&models.List{BoardID: board.ID, Title: title, Position: i})
		}
		log.Println("Created sample board with default lists")
	}

	// 创建示例自动化规则：新卡片通知管理员
	var existingRule models.AutomationRule
	if err := db.Where("workspace_id = ? AND name = ?", ws.ID, "Notify admin on new cards").First(&existingRule).Error; err != nil {
		rule := models.AutomationRule{
			WorkspaceID: ws.ID,
			Name:        "Notify admin on new cards",
			Active:      true,
		}
		db.Create(&rule)
		db.Create(&models.AutomationTrigger{
			RuleID:     rule.ID,
			Type:       models.TriggerCardCreated,
			Conditions: "{}",
		})
		cfgJSON, _ := json.Marshal(map[string]string{
			"userId":  adminUser.ID,
			"message": "A new card was created",
		})
		db.Create(&models.AutomationAction{
			RuleID: rule.ID,
			Type:   models.ActionSendNotification,
			Order:  0,
			Config: string(cfgJSON),
		})
		log.Println("Created sample automation rule")
	}
}
