package models

// ElevationResponse is the JSON body returned by the elevation REST API.
type ElevationResponse struct {
	Results      []ElevationSample `json:"results"`
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
}
