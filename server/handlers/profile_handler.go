package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"profile-server/chart"
	"profile-server/editor"
	"profile-server/models"
	services "profile-server/service"

	"github.com/gorilla/mux"
)

const (
	LAT_QUERY_ARG    = "lat"
	LON_QUERY_ARG    = "lon"
	RADIUS_QUERY_ARG = "radius"
)

// RegionController is the part of the rectangle the HTTP surface drives.
type RegionController interface {
	GetBounds() models.Bounds
	SetBounds(b models.Bounds) error
	Info() editor.InfoWindow
}

// ProfileArchive is the persisted history of sampled profiles.
type ProfileArchive interface {
	GetNearbyProfiles(lat, lon, radius float64) ([]models.ProfileRecord, error)
	GetProfilesInBounds(b models.Bounds) ([]models.ProfileRecord, error)
	GetProfile(id string) (*models.ProfileRecord, error)
	ListProfileIDs() ([]string, error)
	DeleteProfile(id string) error
}

// ProfileResponse is the body of GET /v1/profile.
type ProfileResponse struct {
	Version uint64                `json:"version"`
	Samples models.Profile        `json:"samples"`
	Record  *models.ProfileRecord `json:"record,omitempty"`
}

type ProfileHandler struct {
	profileService *services.ProfileService
	region         RegionController
	archive        ProfileArchive
}

func NewProfileHandler(profileService *services.ProfileService, region RegionController, archive ProfileArchive) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		region:         region,
		archive:        archive,
	}
}

// Ping handles GET /ping
func (h *ProfileHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "pong"})
}

// GetRegion handles GET /v1/region
func (h *ProfileHandler) GetRegion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.region.GetBounds())
}

// PutRegion handles PUT /v1/region. The new bounds are sampled in the
// background; poll /v1/profile for the result.
func (h *ProfileHandler) PutRegion(w http.ResponseWriter, r *http.Request) {
	var bounds models.Bounds
	if err := json.NewDecoder(r.Body).Decode(&bounds); err != nil {
		http.Error(w, "Invalid bounds body", http.StatusBadRequest)
		return
	}
	if err := bounds.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.region.SetBounds(bounds); err != nil {
		if errors.Is(err, editor.ErrNotEditable) || errors.Is(err, editor.ErrNotResizable) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Println("[ProfileHandler] Error setting bounds:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, h.region.GetBounds())
}

// GetRegionInfo handles GET /v1/region/info
func (h *ProfileHandler) GetRegionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.region.Info())
}

// GetProfile handles GET /v1/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, version := h.profileService.Profile()
	if profile == nil {
		profile = models.Profile{}
	}
	writeJSON(w, http.StatusOK, ProfileResponse{
		Version: version,
		Samples: profile,
		Record:  h.profileService.LatestRecord(),
	})
}

// GetProfileStatus handles GET /v1/profile/status
func (h *ProfileHandler) GetProfileStatus(w http.ResponseWriter, r *http.Request) {
	notice := h.profileService.LastNotice()
	if notice == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

// GetChart handles GET /v1/chart
func (h *ProfileHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.profileService.Chart().Render(&buf); err != nil {
		if errors.Is(err, chart.ErrNotInitialized) {
			http.Error(w, "Chart not initialized", http.StatusServiceUnavailable)
			return
		}
		log.Println("[ProfileHandler] Error rendering chart:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Println("[ProfileHandler] Error writing chart:", err)
	}
}

// GetChartState handles GET /v1/chart/state
func (h *ProfileHandler) GetChartState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.profileService.Chart().Snapshot())
}

// GetProfilesNearby handles GET /v1/profiles/nearby?lat=&lon=&radius= (radius in km)
func (h *ProfileHandler) GetProfilesNearby(w http.ResponseWriter, r *http.Request) {
	lat, lon, radius, ok := parseArgs(r.URL.Query(), w)
	if !ok {
		return // error already written
	}

	records, err := h.archive.GetNearbyProfiles(lat, lon, radius)
	if err != nil {
		log.Println("[ProfileHandler] Error loading nearby profiles:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.ProfileRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// GetRegionProfiles handles GET /v1/region/profiles, the stored profiles whose
// transect midpoint lies inside the current rectangle.
func (h *ProfileHandler) GetRegionProfiles(w http.ResponseWriter, r *http.Request) {
	records, err := h.archive.GetProfilesInBounds(h.region.GetBounds())
	if err != nil {
		log.Println("[ProfileHandler] Error loading region profiles:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.ProfileRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ListProfiles handles GET /v1/profiles
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	ids, err := h.archive.ListProfileIDs()
	if err != nil {
		log.Println("[ProfileHandler] Error listing profiles:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetProfileByID handles GET /v1/profiles/{id}
func (h *ProfileHandler) GetProfileByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := h.archive.GetProfile(id)
	if err != nil {
		log.Println("[ProfileHandler] Error loading profile:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteProfileByID handles DELETE /v1/profiles/{id}
func (h *ProfileHandler) DeleteProfileByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.archive.DeleteProfile(id); err != nil {
		log.Println("[ProfileHandler] Error deleting profile:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseArgs(vals url.Values, w http.ResponseWriter) (lat, lon, radius float64, ok bool) {
	var err error

	lat, err = parseArgFloat64(vals, LAT_QUERY_ARG)
	if err != nil || lat < -90 || lat > 90 {
		http.Error(w, "Invalid argument "+LAT_QUERY_ARG, http.StatusBadRequest)
		return
	}
	lon, err = parseArgFloat64(vals, LON_QUERY_ARG)
	if err != nil || lon < -180 || lon > 180 {
		http.Error(w, "Invalid argument "+LON_QUERY_ARG, http.StatusBadRequest)
		return
	}
	radius, err = parseArgFloat64(vals, RADIUS_QUERY_ARG)
	if err != nil || radius <= 0 {
		http.Error(w, "Invalid argument "+RADIUS_QUERY_ARG, http.StatusBadRequest)
		return
	}
	ok = true
	return
}

func parseArgFloat64(vals url.Values, name string) (float64, error) {
	s := vals.Get(name)
	return strconv.ParseFloat(s, 64)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("[ProfileHandler] Error encoding response:", err)
	}
}
