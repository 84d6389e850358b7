package main

import (
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"

	audiencesvc "audience_hub/internal/api/audience/service"
	engagementsvc "audience_hub/internal/api/engagement/service"
	jobsvc "audience_hub/internal/api/job/service"
	platformsvc "audience_hub/internal/api/platform/service"
	"audience_hub/internal/batch"
	"audience_hub/internal/dispatch"
	"audience_hub/internal/global"
	"audience_hub/internal/logger"
	"audience_hub/internal/notification"
	"audience_hub/internal/worker"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Logger tự đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// startScheduleTrigger khởi động worker quét schedule và phát dispatch theo lịch
func startScheduleTrigger() *worker.ScheduleTriggerWorker {
	log := logger.GetAppLogger()
	cfg := global.MongoDB_ServerConfig

	platformService, err := platformsvc.NewPlatformConnectionService()
	if err != nil {
		log.WithError(err).Error("⏰ [SCHEDULE] Failed to create platform service, continuing without schedule trigger")
		return nil
	}
	audienceService, err := audiencesvc.NewAudienceService(platformService)
	if err != nil {
		log.WithError(err).Error("⏰ [SCHEDULE] Failed to create audience service, continuing without schedule trigger")
		return nil
	}
	engagementService, err := engagementsvc.NewEngagementService(audienceService, platformService)
	if err != nil {
		log.WithError(err).Error("⏰ [SCHEDULE] Failed to create engagement service, continuing without schedule trigger")
		return nil
	}
	jobService, err := jobsvc.NewDeliveryJobService()
	if err != nil {
		log.WithError(err).Error("⏰ [SCHEDULE] Failed to create job service, continuing without schedule trigger")
		return nil
	}

	submitter := batch.NewHTTPClient(cfg.BatchComputeURL, time.Duration(cfg.BatchComputeTimeout)*time.Second)
	courier := dispatch.NewCourier(engagementService, audienceService, platformService, jobService,
		submitter, notification.NewLogSink(), cfg.DispatchWorkers)

	trigger := worker.NewScheduleTriggerWorker(engagementService, courier, cfg.ScheduleTriggerSpec)
	if err := trigger.Start(); err != nil {
		log.WithError(err).Error("⏰ [SCHEDULE] Failed to start schedule trigger worker")
		return nil
	}

	log.Infof("⏰ [SCHEDULE] Schedule trigger worker started (spec: %s)", cfg.ScheduleTriggerSpec)
	return trigger
}

// main_thread khởi tạo và chạy Fiber server
func main_thread() {
	app := InitFiberApp()

	cfg := global.MongoDB_ServerConfig
	address := ":" + cfg.Address

	log := logger.GetAppLogger()
	log.Info("Starting Fiber server...")

	// Helper function để resolve đường dẫn tương đối từ thư mục gốc dự án
	resolvePath := func(path string) string {
		if filepath.IsAbs(path) {
			return path
		}
		currentDir, err := os.Getwd()
		if err != nil {
			return path
		}
		for {
			envDir := filepath.Join(currentDir, "config", "env")
			if _, err := os.Stat(envDir); err == nil {
				return filepath.Join(currentDir, path)
			}
			parentDir := filepath.Dir(currentDir)
			if parentDir == currentDir {
				return path
			}
			currentDir = parentDir
		}
	}

	// Kiểm tra xem có bật TLS không
	if cfg.EnableTLS && cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		certPath := resolvePath(cfg.TLSCertFile)
		keyPath := resolvePath(cfg.TLSKeyFile)

		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			log.Fatalf("TLS certificate file not found: %s (resolved from: %s)", certPath, cfg.TLSCertFile)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			log.Fatalf("TLS key file not found: %s (resolved from: %s)", keyPath, cfg.TLSKeyFile)
		}

		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			log.Fatalf("Error loading TLS certificate: %v", err)
		}

		ln, err := net.Listen("tcp", address)
		if err != nil {
			log.Fatalf("Error creating listener: %v", err)
		}

		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}

		tlsListener := tls.NewListener(ln, tlsConfig)

		log.WithFields(map[string]interface{}{
			"address": address,
			"cert":    certPath,
			"key":     keyPath,
		}).Info("Starting server with HTTPS/TLS")

		if err := app.Listener(tlsListener); err != nil {
			log.Fatalf("Error in Fiber Listener with TLS: %v", err)
		}
	} else {
		log.WithFields(map[string]interface{}{
			"address":  address,
			"protocol": "HTTP",
		}).Info("Starting server with HTTP")

		listenConfig := fiber.ListenConfig{}
		if err := app.Listen(address, listenConfig); err != nil {
			log.Fatalf("Error in Fiber Listen: %v", err)
		}
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry
	InitRegistry()

	// Khởi động schedule trigger worker (background)
	trigger := startScheduleTrigger()
	if trigger != nil {
		defer trigger.Stop()
	}

	// Chạy Fiber server trên main thread
	main_thread()
}
