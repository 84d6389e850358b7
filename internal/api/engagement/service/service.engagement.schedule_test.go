package engagementsvc

import (
	"testing"

	engagementmodels "audience_hub/internal/api/engagement/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestScheduleUpdate_SetRoiClear kiểm tra set rồi clear nhắm cùng một path:
// clear dùng $unset xóa hẳn field, không $set giá trị null đè lên
func TestScheduleUpdate_SetRoiClear(t *testing.T) {
	schedule := engagementmodels.Schedule{
		Periodicity: engagementmodels.PeriodicityDaily,
		Every:       1, Hour: 9, Minute: 0, Meridiem: engagementmodels.MeridiemAM,
	}

	set := setScheduleUpdate(destinationSchedulePath, schedule)
	require.NotNil(t, set.Set)
	assert.Equal(t, schedule, set.Set[destinationSchedulePath])
	assert.Empty(t, set.Unset)

	cleared := clearScheduleUpdate(destinationSchedulePath)
	require.NotNil(t, cleared.Unset)
	assert.Contains(t, cleared.Unset, destinationSchedulePath)
	// Clear không được ghi giá trị nào lên path, field phải biến mất hẳn
	assert.Empty(t, cleared.Set)
}

// TestDestinationEdgeArrayFilters kiểm tra array filter trỏ đúng composite key
// (audienceId, platformId) của edge, không dùng positional index
func TestDestinationEdgeArrayFilters(t *testing.T) {
	audienceID := primitive.NewObjectID()
	platformID := primitive.NewObjectID()

	filters := destinationEdgeArrayFilters(audienceID, platformID)
	require.Len(t, filters.Filters, 2)
	assert.Equal(t, bson.M{"ae.audienceId": audienceID}, filters.Filters[0])
	assert.Equal(t, bson.M{"de.platformId": platformID}, filters.Filters[1])
}

// TestAudienceEdgeArrayFilters kiểm tra array filter mức audience edge
func TestAudienceEdgeArrayFilters(t *testing.T) {
	audienceID := primitive.NewObjectID()

	filters := audienceEdgeArrayFilters(audienceID)
	require.Len(t, filters.Filters, 1)
	assert.Equal(t, bson.M{"ae.audienceId": audienceID}, filters.Filters[0])
}
