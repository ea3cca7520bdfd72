package elevation

import (
	"context"
	"errors"
	"testing"

	"profile-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSampleAlongPath_Success(t *testing.T) {
	// Arrange
	client := NewElevationApiClientMock()

	// Act
	profile, err := client.SampleAlongPath(context.Background(), transect, 30)

	// Assert
	require.NoError(t, err)
	assert.Len(t, profile, 30)
	assert.Equal(t, transect[0], profile[0].Location)
	assert.Equal(t, SyntheticElevation(transect[0]), profile[0].Elevation)
	assert.Equal(t, []Call{{Path: transect, Samples: 30}}, client.Calls())
}

func TestMockSampleAlongPath_Status(t *testing.T) {
	client := NewElevationApiClientMock()
	client.SetStatus("UNKNOWN_ERROR")

	profile, err := client.SampleAlongPath(context.Background(), transect, 30)

	assert.Nil(t, profile)
	var statusErr *StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Len(t, client.Calls(), 1)
}

func TestMockSampleAlongPath_CanceledContext(t *testing.T) {
	client := NewElevationApiClientMock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SampleAlongPath(ctx, transect, 30)

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSyntheticElevation_IsDeterministic(t *testing.T) {
	p := models.LatLng{Lat: 44.5452, Lng: -78.5389}

	assert.Equal(t, SyntheticElevation(p), SyntheticElevation(p))
}
