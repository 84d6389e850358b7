// Package engagementmodels - Engagement aggregate thuộc domain Engagement.
package engagementmodels

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliverySnapshot là snapshot trạng thái delivery gần nhất của một edge.
// Snapshot được cập nhật best-effort sau khi job được tạo/chuyển trạng thái,
// chấp nhận cửa sổ eventual-consistency với Job Ledger.
type DeliverySnapshot struct {
	Status    string `json:"status" bson:"status"`
	UpdatedAt int64  `json:"updatedAt" bson:"updatedAt"`
}

// DestinationEdge là bản ghi gắn một destination vào một audience trong engagement.
// Edge được địa chỉ hóa bằng composite key (audienceId, platformId),
// không bao giờ bằng index vị trí trong array.
type DestinationEdge struct {
	PlatformID      primitive.ObjectID `json:"platformId" bson:"platformId"`
	Extension       string             `json:"extension,omitempty" bson:"extension,omitempty"` // Tên contact-list / custom-audience trên platform
	Schedule        *Schedule          `json:"schedule,omitempty" bson:"schedule,omitempty"`
	LatestDelivery  *DeliverySnapshot  `json:"latestDelivery,omitempty" bson:"latestDelivery,omitempty"`
	ReplaceAudience bool               `json:"replaceAudience" bson:"replaceAudience"`
}

// AudienceSchedule là schedule ở mức audience với validity window
type AudienceSchedule struct {
	Schedule  Schedule `json:"schedule" bson:"schedule"`
	StartDate int64    `json:"startDate" bson:"startDate"` // UnixMilli
	EndDate   int64    `json:"endDate,omitempty" bson:"endDate,omitempty"`
}

// AudienceEdge là bản ghi gắn một audience vào engagement
type AudienceEdge struct {
	AudienceID   primitive.ObjectID `json:"audienceId" bson:"audienceId"`
	Destinations []DestinationEdge  `json:"destinations" bson:"destinations"`
	Schedule     *AudienceSchedule  `json:"schedule,omitempty" bson:"schedule,omitempty"`
}

// Engagement - Nhóm có tên các audience và các destination mỗi audience được gửi tới
type Engagement struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name" index:"compound:name_enabled_idx"`
	Description   string             `json:"description,omitempty" bson:"description,omitempty"`
	AudienceEdges []AudienceEdge     `json:"audienceEdges" bson:"audienceEdges"`
	Enabled       bool               `json:"enabled" bson:"enabled" index:"compound:name_enabled_idx"`
	CreatedAt     int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt     int64              `json:"updatedAt" bson:"updatedAt"`
}

// FindAudienceEdge tìm audience-edge theo audience id
func (e *Engagement) FindAudienceEdge(audienceID primitive.ObjectID) *AudienceEdge {
	for i := range e.AudienceEdges {
		if e.AudienceEdges[i].AudienceID == audienceID {
			return &e.AudienceEdges[i]
		}
	}
	return nil
}

// FindDestinationEdge tìm destination-edge theo composite key (audienceId, platformId)
func (e *Engagement) FindDestinationEdge(audienceID, platformID primitive.ObjectID) *DestinationEdge {
	audienceEdge := e.FindAudienceEdge(audienceID)
	if audienceEdge == nil {
		return nil
	}
	for i := range audienceEdge.Destinations {
		if audienceEdge.Destinations[i].PlatformID == platformID {
			return &audienceEdge.Destinations[i]
		}
	}
	return nil
}
