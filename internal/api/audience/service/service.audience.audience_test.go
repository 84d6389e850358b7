package audiencesvc

import (
	"testing"

	engagementmodels "audience_hub/internal/api/engagement/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestDestinationRoundTrip kiểm tra append rồi remove hoạt động trên cùng key:
// update push ghi destination với platformId, update pull gỡ đúng platformId đó
func TestDestinationRoundTrip(t *testing.T) {
	platformID := primitive.NewObjectID()
	dest := engagementmodels.DestinationEdge{
		PlatformID: platformID,
		Extension:  "summer-sale",
	}

	var destinations []engagementmodels.DestinationEdge
	assert.False(t, hasDestination(destinations, platformID))

	// Append: $push destination vào danh sách
	push := appendDestinationUpdate(dest)
	require.NotNil(t, push.Push)
	pushed, ok := push.Push["destinations"].(engagementmodels.DestinationEdge)
	require.True(t, ok)
	assert.Equal(t, platformID, pushed.PlatformID)

	destinations = append(destinations, pushed)
	assert.True(t, hasDestination(destinations, platformID))

	// Remove: $pull theo đúng platformId mà push đã ghi
	pull := removeDestinationUpdate(platformID)
	require.NotNil(t, pull.Pull)
	criteria, ok := pull.Pull["destinations"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, platformID, criteria["platformId"])
	assert.Empty(t, pull.Push)
}

// TestHasDestination_MoiPlatformMotLan kiểm tra guard chống duplicate platform
func TestHasDestination_MoiPlatformMotLan(t *testing.T) {
	attached := primitive.NewObjectID()
	other := primitive.NewObjectID()
	destinations := []engagementmodels.DestinationEdge{
		{PlatformID: attached},
	}

	assert.True(t, hasDestination(destinations, attached))
	assert.False(t, hasDestination(destinations, other))
}
