package jobsvc

import (
	"context"
	"testing"

	engagementmodels "audience_hub/internal/api/engagement/models"
	jobmodels "audience_hub/internal/api/job/models"
	"audience_hub/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeEdgeResolver trả về engagement theo map, id lạ trả về not-found
type fakeEdgeResolver struct {
	engagements map[primitive.ObjectID]engagementmodels.Engagement
}

func (f *fakeEdgeResolver) GetById(ctx context.Context, id primitive.ObjectID) (engagementmodels.Engagement, error) {
	engagement, ok := f.engagements[id]
	if !ok {
		return engagementmodels.Engagement{}, common.ErrNotFound
	}
	return engagement, nil
}

func jobFor(audienceID, platformID primitive.ObjectID, engagementID *primitive.ObjectID) jobmodels.DeliveryJob {
	return jobmodels.DeliveryJob{
		ID:           primitive.NewObjectID(),
		AudienceID:   audienceID,
		PlatformID:   platformID,
		EngagementID: engagementID,
	}
}

// TestPruneDetachedEdges kiểm tra history view loại job của edge đã detach
// khỏi engagement hiện tại, giữ job standalone và job của edge còn gắn
func TestPruneDetachedEdges(t *testing.T) {
	audienceID := primitive.NewObjectID()
	attachedPlatform := primitive.NewObjectID()
	detachedPlatform := primitive.NewObjectID()
	engagementID := primitive.NewObjectID()
	missingEngagementID := primitive.NewObjectID()

	resolver := &fakeEdgeResolver{engagements: map[primitive.ObjectID]engagementmodels.Engagement{
		engagementID: {
			ID: engagementID,
			AudienceEdges: []engagementmodels.AudienceEdge{
				{
					AudienceID: audienceID,
					Destinations: []engagementmodels.DestinationEdge{
						{PlatformID: attachedPlatform},
					},
				},
			},
		},
	}}

	attached := jobFor(audienceID, attachedPlatform, &engagementID)
	detached := jobFor(audienceID, detachedPlatform, &engagementID)
	standalone := jobFor(audienceID, detachedPlatform, nil)
	orphaned := jobFor(audienceID, attachedPlatform, &missingEngagementID)

	kept := pruneDetachedEdges(context.Background(),
		resolver,
		[]jobmodels.DeliveryJob{attached, detached, standalone, orphaned},
	)

	require.Len(t, kept, 2)
	assert.Equal(t, attached.ID, kept[0].ID)
	assert.Equal(t, standalone.ID, kept[1].ID)
}

// TestPruneDetachedEdges_KhongCoResolver kiểm tra service không cấu hình
// edge resolver thì history giữ nguyên
func TestPruneDetachedEdges_KhongCoResolver(t *testing.T) {
	engagementID := primitive.NewObjectID()
	jobs := []jobmodels.DeliveryJob{
		jobFor(primitive.NewObjectID(), primitive.NewObjectID(), &engagementID),
	}

	kept := pruneDetachedEdges(context.Background(), nil, jobs)
	assert.Equal(t, jobs, kept)
}
