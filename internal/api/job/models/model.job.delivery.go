// Package jobmodels - DeliveryJob thuộc domain Job (Delivery Job Ledger).
package jobmodels

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái lifecycle của delivery job.
// Chuyển trạng thái là monotonic: Pending -> InProgress -> {Succeeded, Failed}.
// Job đã terminal không bao giờ được mở lại, redelivery tạo job mới.
const (
	JobStatusPending    = "Pending"
	JobStatusInProgress = "InProgress"
	JobStatusSucceeded  = "Succeeded"
	JobStatusFailed     = "Failed"
)

// jobStatusRank gán bậc cho từng trạng thái để kiểm tra monotonic
var jobStatusRank = map[string]int{
	JobStatusPending:    0,
	JobStatusInProgress: 1,
	JobStatusSucceeded:  2,
	JobStatusFailed:     2,
}

// IsValidJobStatus kiểm tra status có thuộc vocabulary không
func IsValidJobStatus(status string) bool {
	_, ok := jobStatusRank[status]
	return ok
}

// IsTerminalJobStatus kiểm tra status có phải terminal không
func IsTerminalJobStatus(status string) bool {
	return status == JobStatusSucceeded || status == JobStatusFailed
}

// CanTransition kiểm tra chuyển trạng thái from -> to có hợp lệ không.
// Terminal không bao giờ chuyển tiếp; không quay lại bậc thấp hơn;
// set lại cùng trạng thái được coi là idempotent.
func CanTransition(from, to string) bool {
	fromRank, okFrom := jobStatusRank[from]
	toRank, okTo := jobStatusRank[to]
	if !okFrom || !okTo {
		return false
	}
	if from == to {
		return true
	}
	if IsTerminalJobStatus(from) {
		return false
	}
	return toRank > fromRank
}

// DeliveryJob - Một lần dispatch audience tới một destination
type DeliveryJob struct {
	ID                   primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	AudienceID           primitive.ObjectID   `json:"audienceId" bson:"audienceId" index:"compound:audience_platform_idx"`
	PlatformID           primitive.ObjectID   `json:"platformId" bson:"platformId" index:"compound:audience_platform_idx"`
	EngagementID         *primitive.ObjectID  `json:"engagementId,omitempty" bson:"engagementId,omitempty" index:"single:1"`
	Status               string               `json:"status" bson:"status" index:"single:1"`
	StartTime            *int64               `json:"startTime,omitempty" bson:"startTime,omitempty"`
	EndTime              *int64               `json:"endTime,omitempty" bson:"endTime,omitempty"`
	PlatformAudienceSize int64                `json:"platformAudienceSize" bson:"platformAudienceSize"`
	CampaignIDs          []string             `json:"campaignIds,omitempty" bson:"campaignIds,omitempty"`
	LookalikeIDs         []primitive.ObjectID `json:"lookalikeIds,omitempty" bson:"lookalikeIds,omitempty"`
	ExternalHandle       string               `json:"externalHandle,omitempty" bson:"externalHandle,omitempty"`
	CreatedAt            int64                `json:"createdAt" bson:"createdAt"`
	UpdatedAt            int64                `json:"updatedAt" bson:"updatedAt"`
}
