package main

import (
	"context"

	"audience_hub/config"
	audiencemodels "audience_hub/internal/api/audience/models"
	engagementmodels "audience_hub/internal/api/engagement/models"
	jobmodels "audience_hub/internal/api/job/models"
	platformmodels "audience_hub/internal/api/platform/models"
	"audience_hub/internal/connector"
	"audience_hub/internal/database"
	"audience_hub/internal/global"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// InitGlobal khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initConnectors()       // Đăng ký các connector platform
}

// initColNames khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.PlatformConnections = "platform_connections"
	global.MongoDB_ColNames.Engagements = "engagements"
	global.MongoDB_ColNames.Audiences = "audiences"
	global.MongoDB_ColNames.LookalikeAudiences = "lookalike_audiences"
	global.MongoDB_ColNames.DeliveryJobs = "delivery_jobs"

	logrus.Info("Initialized collection names")
}

// initValidator khởi tạo validator cho DTO
func initValidator() {
	global.Validate = validator.New()
	logrus.Info("Initialized validator")
}

// initConfig khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// initDatabase_MongoDB khởi tạo kết nối database, đảm bảo collection và index
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	if err := database.EnsureDatabaseAndCollections(global.MongoDB_Session); err != nil {
		logrus.Fatalf("Failed to ensure database and collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	dbName := global.MongoDB_ServerConfig.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)
	indexTargets := []struct {
		colName string
		model   interface{}
	}{
		{global.MongoDB_ColNames.PlatformConnections, platformmodels.PlatformConnection{}},
		{global.MongoDB_ColNames.Engagements, engagementmodels.Engagement{}},
		{global.MongoDB_ColNames.Audiences, audiencemodels.Audience{}},
		{global.MongoDB_ColNames.LookalikeAudiences, audiencemodels.LookalikeAudience{}},
		{global.MongoDB_ColNames.DeliveryJobs, jobmodels.DeliveryJob{}},
	}
	for _, target := range indexTargets {
		if err := database.CreateIndexes(context.TODO(), db.Collection(target.colName), target.model); err != nil {
			logrus.Fatalf("Failed to create indexes for %s: %v", target.colName, err)
		}
	}
	logrus.Info("Created indexes for all collections")
}

// initConnectors đăng ký connector mặc định cho các loại platform
func initConnectors() {
	connector.RegisterDefaults()
	logrus.Info("Registered platform connectors")
}
