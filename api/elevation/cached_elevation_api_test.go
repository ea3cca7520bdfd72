package elevation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedElevationAPI_HitsSkipUpstream(t *testing.T) {
	upstream := NewElevationApiClientMock()
	cached, err := NewCachedElevationAPI(upstream, 4)
	require.NoError(t, err)

	first, err := cached.SampleAlongPath(context.Background(), transect, 30)
	require.NoError(t, err)
	second, err := cached.SampleAlongPath(context.Background(), transect, 30)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, upstream.Calls(), 1)
	assert.Equal(t, 1, cached.Len())
}

func TestCachedElevationAPI_ReturnsCopies(t *testing.T) {
	upstream := NewElevationApiClientMock()
	cached, err := NewCachedElevationAPI(upstream, 4)
	require.NoError(t, err)

	first, err := cached.SampleAlongPath(context.Background(), transect, 30)
	require.NoError(t, err)
	want := first[0].Elevation
	first[0].Elevation = -9999

	second, err := cached.SampleAlongPath(context.Background(), transect, 30)
	require.NoError(t, err)
	assert.Equal(t, want, second[0].Elevation)
}

func TestCachedElevationAPI_FailuresAreNotCached(t *testing.T) {
	upstream := NewElevationApiClientMock()
	upstream.SetStatus("OVER_QUERY_LIMIT")
	cached, err := NewCachedElevationAPI(upstream, 4)
	require.NoError(t, err)

	_, err = cached.SampleAlongPath(context.Background(), transect, 30)
	assert.Error(t, err)

	upstream.SetStatus(STATUS_OK)
	profile, err := cached.SampleAlongPath(context.Background(), transect, 30)
	require.NoError(t, err)
	assert.Len(t, profile, 30)
	assert.Len(t, upstream.Calls(), 2)
}

func TestCachedElevationAPI_DistinctSampleCounts(t *testing.T) {
	upstream := NewElevationApiClientMock()
	cached, err := NewCachedElevationAPI(upstream, 4)
	require.NoError(t, err)

	_, _ = cached.SampleAlongPath(context.Background(), transect, 30)
	_, _ = cached.SampleAlongPath(context.Background(), transect, 10)

	assert.Len(t, upstream.Calls(), 2)
	assert.Equal(t, 2, cached.Len())
}
