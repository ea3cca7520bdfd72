package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"profile-server/api/elevation"
	"profile-server/chart"
	"profile-server/editor"
	"profile-server/models"
	services "profile-server/service"
	"profile-server/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var initialBounds = models.Bounds{North: 44.6, South: 44.5, East: -78.5, West: -78.6}

type stubArchive struct {
	records   []models.ProfileRecord
	err       error
	got       [3]float64
	gotBounds models.Bounds
	deleted   []string
}

func (s *stubArchive) GetNearbyProfiles(lat, lon, radius float64) ([]models.ProfileRecord, error) {
	s.got = [3]float64{lat, lon, radius}
	return s.records, s.err
}

func (s *stubArchive) GetProfilesInBounds(b models.Bounds) ([]models.ProfileRecord, error) {
	s.gotBounds = b
	return s.records, s.err
}

func (s *stubArchive) GetProfile(id string) (*models.ProfileRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.records {
		if s.records[i].ID == id {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *stubArchive) ListProfileIDs() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var ids []string
	for _, rec := range s.records {
		ids = append(ids, rec.ID)
	}
	return ids, nil
}

func (s *stubArchive) DeleteProfile(id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

type testEnv struct {
	rect    *editor.Rectangle
	api     *elevation.ElevationApiClientMock
	service *services.ProfileService
	archive *stubArchive
	handler *ProfileHandler
}

func newTestEnv(editable, draggable bool) *testEnv {
	rect := editor.NewRectangle("map", initialBounds, editable, draggable)
	api := elevation.NewElevationApiClientMock()
	svc := services.NewProfileService(rect, api, store.NewProfileStore(), chart.NewProfileChart("Elevation profile"), nil, nil, 30, time.Second)
	rect.OnBoundsChanged(svc.OnBoundsChanged)
	archive := &stubArchive{}
	return &testEnv{
		rect:    rect,
		api:     api,
		service: svc,
		archive: archive,
		handler: NewProfileHandler(svc, rect, archive),
	}
}

func TestPing(t *testing.T) {
	env := newTestEnv(true, true)
	rr := httptest.NewRecorder()

	env.handler.Ping(rr, httptest.NewRequest("GET", "/ping", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"pong"}`, rr.Body.String())
}

func TestGetRegion(t *testing.T) {
	env := newTestEnv(true, true)
	rr := httptest.NewRecorder()

	env.handler.GetRegion(rr, httptest.NewRequest("GET", "/v1/region", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"north":44.6,"south":44.5,"east":-78.5,"west":-78.6}`, rr.Body.String())
}

func TestPutRegion_SamplesNewBounds(t *testing.T) {
	env := newTestEnv(true, true)
	body := `{"north":44.7,"south":44.6,"east":-78.4,"west":-78.5}`
	rr := httptest.NewRecorder()

	env.handler.PutRegion(rr, httptest.NewRequest("PUT", "/v1/region", strings.NewReader(body)))
	env.service.Wait()

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.JSONEq(t, body, rr.Body.String())

	profile, version := env.service.Profile()
	assert.Equal(t, uint64(1), version)
	assert.Len(t, profile, 30)

	info := httptest.NewRecorder()
	env.handler.GetRegionInfo(info, httptest.NewRequest("GET", "/v1/region/info", nil))
	var window editor.InfoWindow
	require.NoError(t, json.Unmarshal(info.Body.Bytes(), &window))
	assert.True(t, window.Open)
	assert.Contains(t, window.Content, "Rectangle moved.")
	assert.Equal(t, models.LatLng{Lat: 44.7, Lng: -78.4}, window.Anchor)
}

func TestPutRegion_InvalidBody(t *testing.T) {
	env := newTestEnv(true, true)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `north=1`},
		{name: "inverted", body: `{"north":44.5,"south":44.6,"east":-78.5,"west":-78.6}`},
		{name: "out of range", body: `{"north":91,"south":44.6,"east":-78.5,"west":-78.6}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			env.handler.PutRegion(rr, httptest.NewRequest("PUT", "/v1/region", strings.NewReader(test.body)))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
	assert.Empty(t, env.api.Calls())
}

func TestPutRegion_LockedRectangle(t *testing.T) {
	env := newTestEnv(false, false)
	rr := httptest.NewRecorder()

	env.handler.PutRegion(rr, httptest.NewRequest("PUT", "/v1/region",
		strings.NewReader(`{"north":44.7,"south":44.6,"east":-78.4,"west":-78.5}`)))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, initialBounds, env.rect.GetBounds())
}

func TestGetProfile_EmptyBeforeAnySample(t *testing.T) {
	env := newTestEnv(true, true)
	rr := httptest.NewRecorder()

	env.handler.GetProfile(rr, httptest.NewRequest("GET", "/v1/profile", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":0,"samples":[]}`, rr.Body.String())
}

func TestGetProfileStatus(t *testing.T) {
	env := newTestEnv(true, true)

	rr := httptest.NewRecorder()
	env.handler.GetProfileStatus(rr, httptest.NewRequest("GET", "/v1/profile/status", nil))
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	env.api.SetStatus("INVALID_REQUEST")
	require.NoError(t, env.rect.SetBounds(models.Bounds{North: 44.7, South: 44.6, East: -78.4, West: -78.5}))
	env.service.Wait()

	rr = httptest.NewRecorder()
	env.handler.GetProfileStatus(rr, httptest.NewRequest("GET", "/v1/profile/status", nil))
	var notice models.Notice
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notice))
	assert.Equal(t, "INVALID_REQUEST", notice.Status)
	assert.Equal(t, uint64(1), notice.Generation)
}

func TestGetChart(t *testing.T) {
	env := newTestEnv(true, true)

	rr := httptest.NewRecorder()
	env.handler.GetChart(rr, httptest.NewRequest("GET", "/v1/chart", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	require.NoError(t, env.rect.SetBounds(models.Bounds{North: 44.7, South: 44.6, East: -78.4, West: -78.5}))
	env.service.Wait()

	rr = httptest.NewRecorder()
	env.handler.GetChart(rr, httptest.NewRequest("GET", "/v1/chart", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "echarts")
}

func TestGetChartState(t *testing.T) {
	env := newTestEnv(true, true)
	rr := httptest.NewRecorder()

	env.handler.GetChartState(rr, httptest.NewRequest("GET", "/v1/chart/state", nil))

	var snap chart.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, "uninitialized", snap.State)
}

func TestGetProfilesNearby(t *testing.T) {
	env := newTestEnv(true, true)
	env.archive.records = []models.ProfileRecord{{ID: "abc"}}
	rr := httptest.NewRecorder()

	env.handler.GetProfilesNearby(rr, httptest.NewRequest("GET", "/v1/profiles/nearby?lat=44.55&lon=-78.55&radius=10", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, [3]float64{44.55, -78.55, 10}, env.archive.got)
	var records []models.ProfileRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "abc", records[0].ID)
}

func TestGetProfilesNearby_Errors(t *testing.T) {
	env := newTestEnv(true, true)

	rr := httptest.NewRecorder()
	env.handler.GetProfilesNearby(rr, httptest.NewRequest("GET", "/v1/profiles/nearby?lat=abc&lon=1&radius=1", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	env.handler.GetProfilesNearby(rr, httptest.NewRequest("GET", "/v1/profiles/nearby?lat=1&lon=1&radius=0", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	env.archive.err = errors.New("redis down")
	rr = httptest.NewRecorder()
	env.handler.GetProfilesNearby(rr, httptest.NewRequest("GET", "/v1/profiles/nearby?lat=1&lon=1&radius=1", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetRegionProfiles(t *testing.T) {
	env := newTestEnv(true, true)
	env.archive.records = []models.ProfileRecord{{ID: "inside"}}
	rr := httptest.NewRecorder()

	env.handler.GetRegionProfiles(rr, httptest.NewRequest("GET", "/v1/region/profiles", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, initialBounds, env.archive.gotBounds)
	var records []models.ProfileRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "inside", records[0].ID)
}

func TestListProfiles(t *testing.T) {
	env := newTestEnv(true, true)
	rr := httptest.NewRecorder()

	env.handler.ListProfiles(rr, httptest.NewRequest("GET", "/v1/profiles", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	env.archive.records = []models.ProfileRecord{{ID: "a"}, {ID: "b"}}
	rr = httptest.NewRecorder()
	env.handler.ListProfiles(rr, httptest.NewRequest("GET", "/v1/profiles", nil))
	assert.JSONEq(t, `["a","b"]`, rr.Body.String())
}

func TestGetProfileByID(t *testing.T) {
	env := newTestEnv(true, true)
	env.archive.records = []models.ProfileRecord{{ID: "abc", Generation: 4}}

	rr := httptest.NewRecorder()
	req := mux.SetURLVars(httptest.NewRequest("GET", "/v1/profiles/abc", nil), map[string]string{"id": "abc"})
	env.handler.GetProfileByID(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var rec models.ProfileRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, uint64(4), rec.Generation)

	rr = httptest.NewRecorder()
	req = mux.SetURLVars(httptest.NewRequest("GET", "/v1/profiles/missing", nil), map[string]string{"id": "missing"})
	env.handler.GetProfileByID(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	env.archive.err = errors.New("redis down")
	rr = httptest.NewRecorder()
	env.handler.GetProfileByID(rr, req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestDeleteProfileByID(t *testing.T) {
	env := newTestEnv(true, true)

	rr := httptest.NewRecorder()
	req := mux.SetURLVars(httptest.NewRequest("DELETE", "/v1/profiles/abc", nil), map[string]string{"id": "abc"})
	env.handler.DeleteProfileByID(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{"abc"}, env.archive.deleted)

	env.archive.err = errors.New("redis down")
	rr = httptest.NewRecorder()
	env.handler.DeleteProfileByID(rr, req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
