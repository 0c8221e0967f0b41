package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_CoverEveryStore(t *testing.T) {
	defs := Collections()
	for _, name := range []string{"Bookings", "Booking_locks", "Places", "Users"} {
		def, ok := defs[name]
		require.True(t, ok, name)
		assert.NotEmpty(t, def.Validator, name)
	}
}

func TestIndexes_UniqueKeys(t *testing.T) {
	require.NotNil(t, PlacesIndexes[0].Options)
	assert.True(t, *PlacesIndexes[0].Options.Unique)
	assert.Equal(t, bson.D{{Key: "name", Value: 1}}, PlacesIndexes[0].Keys)

	require.NotNil(t, UsersIndexes[0].Options)
	assert.True(t, *UsersIndexes[0].Options.Unique)
	assert.Equal(t, bson.D{{Key: "email", Value: 1}}, UsersIndexes[0].Keys)
}

func TestBookingsIndex_SupportsOverlapQuery(t *testing.T) {
	keys, ok := BookingsIndexes[0].Keys.(bson.D)
	require.True(t, ok)
	var names []string
	for _, k := range keys {
		names = append(names, k.Key)
	}
	assert.Equal(t, []string{"place_id", "status", "event_start_time", "event_end_time"}, names)
}
