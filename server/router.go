package server

import (
	"net/http"

	"profile-server/metrics"

	"github.com/gorilla/mux"
)

// ProfileRoutes is implemented by handlers.ProfileHandler.
type ProfileRoutes interface {
	Ping(w http.ResponseWriter, r *http.Request)
	GetRegion(w http.ResponseWriter, r *http.Request)
	PutRegion(w http.ResponseWriter, r *http.Request)
	GetRegionInfo(w http.ResponseWriter, r *http.Request)
	GetProfile(w http.ResponseWriter, r *http.Request)
	GetProfileStatus(w http.ResponseWriter, r *http.Request)
	GetChart(w http.ResponseWriter, r *http.Request)
	GetChartState(w http.ResponseWriter, r *http.Request)
	GetProfilesNearby(w http.ResponseWriter, r *http.Request)
	GetRegionProfiles(w http.ResponseWriter, r *http.Request)
	ListProfiles(w http.ResponseWriter, r *http.Request)
	GetProfileByID(w http.ResponseWriter, r *http.Request)
	DeleteProfileByID(w http.ResponseWriter, r *http.Request)
}

type Router struct {
	profileHandler ProfileRoutes
	router         *mux.Router
}

// NewRouter creates a router with the app’s routes.
func NewRouter(
	profileHandler ProfileRoutes,
	router *mux.Router) *Router {
	return &Router{
		profileHandler: profileHandler,
		router:         router,
	}
}

func (r *Router) RegisterRoutes() {
	r.router.Use(metrics.Middleware)

	r.router.HandleFunc("/ping", r.profileHandler.Ping).Methods("GET")

	// PUT expects a JSON body {"north":..,"south":..,"east":..,"west":..}
	r.router.HandleFunc("/v1/region", r.profileHandler.GetRegion).Methods("GET")
	r.router.HandleFunc("/v1/region", r.profileHandler.PutRegion).Methods("PUT")
	r.router.HandleFunc("/v1/region/info", r.profileHandler.GetRegionInfo).Methods("GET")
	r.router.HandleFunc("/v1/region/profiles", r.profileHandler.GetRegionProfiles).Methods("GET")

	r.router.HandleFunc("/v1/profile", r.profileHandler.GetProfile).Methods("GET")
	r.router.HandleFunc("/v1/profile/status", r.profileHandler.GetProfileStatus).Methods("GET")

	r.router.HandleFunc("/v1/chart", r.profileHandler.GetChart).Methods("GET")
	r.router.HandleFunc("/v1/chart/state", r.profileHandler.GetChartState).Methods("GET")

	// expects ?lat={latitude(float)}&lon={longitude(float)}&radius={km(float)}
	r.router.HandleFunc("/v1/profiles/nearby", r.profileHandler.GetProfilesNearby).Methods("GET")
	r.router.HandleFunc("/v1/profiles", r.profileHandler.ListProfiles).Methods("GET")
	r.router.HandleFunc("/v1/profiles/{id}", r.profileHandler.GetProfileByID).Methods("GET")
	r.router.HandleFunc("/v1/profiles/{id}", r.profileHandler.DeleteProfileByID).Methods("DELETE")

	r.router.Handle("/metrics", metrics.Handler()).Methods("GET")
}
