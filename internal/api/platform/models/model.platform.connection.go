// Package platformmodels - PlatformConnection thuộc domain Platform.
package platformmodels

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các loại platform đích được hỗ trợ
const (
	PlatformTypeFacebook  = "facebook"
	PlatformTypeGoogle    = "google"
	PlatformTypeTiktok    = "tiktok"
	PlatformTypeKlaviyo   = "klaviyo"
	PlatformTypeMailchimp = "mailchimp"
	PlatformTypeQualtrics = "qualtrics"
)

// Trạng thái kết nối của platform
const (
	ConnStatusPending    = "Pending"
	ConnStatusInProgress = "InProgress"
	ConnStatusSucceeded  = "Succeeded"
	ConnStatusFailed     = "Failed"
)

// SupportedPlatformTypes liệt kê các loại platform hợp lệ
var SupportedPlatformTypes = map[string]bool{
	PlatformTypeFacebook:  true,
	PlatformTypeGoogle:    true,
	PlatformTypeTiktok:    true,
	PlatformTypeKlaviyo:   true,
	PlatformTypeMailchimp: true,
	PlatformTypeQualtrics: true,
}

// ValidConnStatuses liệt kê các trạng thái kết nối hợp lệ
var ValidConnStatuses = map[string]bool{
	ConnStatusPending:    true,
	ConnStatusInProgress: true,
	ConnStatusSucceeded:  true,
	ConnStatusFailed:     true,
}

// AuthRef là con trỏ tới thông tin xác thực của platform.
// Chỉ chứa giá trị inline không nhạy cảm hoặc key trỏ vào secrets store,
// không bao giờ chứa secret thô.
type AuthRef struct {
	Inline    map[string]string `json:"inline,omitempty" bson:"inline,omitempty"`       // Các giá trị không nhạy cảm (account id, ad account...)
	SecretKey string            `json:"secretKey,omitempty" bson:"secretKey,omitempty"` // Key trỏ vào secrets store
}

// PlatformConnection - Một đích delivery (ad/email/survey platform)
type PlatformConnection struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PlatformType     string             `json:"platformType" bson:"platformType" index:"single:1"`
	Name             string             `json:"name" bson:"name" index:"compound:name_enabled_idx"`
	ConnectionStatus string             `json:"connectionStatus" bson:"connectionStatus" index:"single:1"`
	StatusUpdatedAt  int64              `json:"statusUpdatedAt,omitempty" bson:"statusUpdatedAt,omitempty"`
	AuthRef          AuthRef            `json:"authRef" bson:"authRef"`
	Enabled          bool               `json:"enabled" bson:"enabled" index:"compound:name_enabled_idx"`
	Favorite         bool               `json:"favorite" bson:"favorite"`
	CreatedAt        int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt        int64              `json:"updatedAt" bson:"updatedAt"`
}
