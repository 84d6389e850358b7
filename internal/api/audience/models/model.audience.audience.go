// Package audiencemodels - Audience và LookalikeAudience thuộc domain Audience.
package audiencemodels

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	engagementmodels "audience_hub/internal/api/engagement/models"
)

// Audience - Tập khách hàng xác định bởi filter criteria.
// Filter identity là immutable; danh sách destinations (cho standalone
// delivery, không qua engagement) được append/remove.
type Audience struct {
	ID           primitive.ObjectID                 `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string                             `json:"name" bson:"name" index:"compound:name_enabled_idx"`
	Filters      bson.M                             `json:"filters,omitempty" bson:"filters,omitempty"` // Filter criteria, opaque với core
	Destinations []engagementmodels.DestinationEdge `json:"destinations,omitempty" bson:"destinations,omitempty"`
	CreatedBy    string                             `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	Size         int64                              `json:"size" bson:"size"`
	Enabled      bool                               `json:"enabled" bson:"enabled" index:"compound:name_enabled_idx"`
	CreatedAt    int64                              `json:"createdAt" bson:"createdAt"`
	UpdatedAt    int64                              `json:"updatedAt" bson:"updatedAt"`
}
