package engagementsvc

import (
	"testing"

	engagementmodels "audience_hub/internal/api/engagement/models"
	"audience_hub/internal/rollup"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func destinationWithStatus(status string) engagementmodels.DestinationEdge {
	return engagementmodels.DestinationEdge{
		PlatformID:     primitive.NewObjectID(),
		LatestDelivery: &engagementmodels.DeliverySnapshot{Status: status},
	}
}

// TestDeliveryStatuses_EdgeChuaDelivery kiểm tra edge chưa từng delivery
// đóng góp NotDelivered vào rollup input thay vì bị bỏ qua
func TestDeliveryStatuses_EdgeChuaDelivery(t *testing.T) {
	engagement := engagementmodels.Engagement{
		AudienceEdges: []engagementmodels.AudienceEdge{
			{
				AudienceID: primitive.NewObjectID(),
				Destinations: []engagementmodels.DestinationEdge{
					destinationWithStatus(string(rollup.StatusFailed)),
					{PlatformID: primitive.NewObjectID()}, // chưa có latestDelivery
				},
			},
		},
	}

	statuses := deliveryStatuses(&engagement)
	assert.Len(t, statuses, 2)
	assert.Contains(t, statuses, rollup.StatusNotDelivered)

	// Edge chưa delivery kéo rollup về NotDelivered thay vì Failed
	got := rollup.NewDefaultCalculator().Reduce(statuses)
	assert.Equal(t, rollup.StatusNotDelivered, got)
}

// TestDeliveryStatuses_TatCaDaDelivery kiểm tra rollup khi mọi edge đều có snapshot
func TestDeliveryStatuses_TatCaDaDelivery(t *testing.T) {
	engagement := engagementmodels.Engagement{
		AudienceEdges: []engagementmodels.AudienceEdge{
			{
				AudienceID: primitive.NewObjectID(),
				Destinations: []engagementmodels.DestinationEdge{
					destinationWithStatus(string(rollup.StatusFailed)),
					destinationWithStatus(string(rollup.StatusActive)),
				},
			},
		},
	}

	got := rollup.NewDefaultCalculator().Reduce(deliveryStatuses(&engagement))
	assert.Equal(t, rollup.StatusActive, got)
}

// TestDeliveryStatuses_KhongCoEdge kiểm tra engagement rỗng cho rollup mặc định
func TestDeliveryStatuses_KhongCoEdge(t *testing.T) {
	engagement := engagementmodels.Engagement{}

	statuses := deliveryStatuses(&engagement)
	assert.Empty(t, statuses)
	assert.Equal(t, rollup.StatusNotDelivered, rollup.NewDefaultCalculator().Reduce(statuses))
}
