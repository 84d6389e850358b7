package global

import (
	"audience_hub/config"
	"audience_hub/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_Hub_CollectionName chứa tên các collection trong MongoDB
type MongoDB_Hub_CollectionName struct {
	PlatformConnections string // Tên collection cho platform connections (đích quảng cáo)
	Engagements         string // Tên collection cho engagements (điều phối delivery)
	Audiences           string // Tên collection cho audiences
	LookalikeAudiences  string // Tên collection cho lookalike audiences
	DeliveryJobs        string // Tên collection cho delivery job ledger
}

// Các biến toàn cục
var Validate *validator.Validate               // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client              // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration // Cấu hình của server
var MongoDB_ColNames MongoDB_Hub_CollectionName = *new(MongoDB_Hub_CollectionName)

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases
