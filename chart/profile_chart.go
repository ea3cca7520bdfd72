// Package chart draws the elevation profile as a line chart indexed by sample.
package chart

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"profile-server/config"
	"profile-server/metrics"
	"profile-server/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// State of a ProfileChart. A chart only ever moves from Uninitialized to Rendered.
type State int

const (
	Uninitialized State = iota
	Rendered
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Rendered:
		return "rendered"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrAlreadyInitialized = errors.New("chart already initialized")
	ErrNotInitialized     = errors.New("chart not initialized")
)

// EasingCubicInOut is the easing applied to update transitions.
const EasingCubicInOut = "cubicInOut"

// Domain is a closed [min, max] interval.
type Domain [2]float64

// Transition describes how the last update animates the line and both axes.
type Transition struct {
	Duration time.Duration `json:"duration"`
	Easing   string        `json:"easing"`
	Targets  []string      `json:"targets"`
}

// Snapshot is a read-only copy of what the chart currently shows.
type Snapshot struct {
	State      string      `json:"state"`
	XDomain    Domain      `json:"x_domain"`
	YDomain    Domain      `json:"y_domain"`
	Elevations []float64   `json:"elevations"`
	Transition *Transition `json:"transition,omitempty"`
	Draws      int         `json:"draws"`
}

// ProfileChart is the elevation chart. X is the sample index, Y is elevation
// with a fixed floor of config.CHART_Y_FLOOR.
type ProfileChart struct {
	mu         sync.RWMutex
	title      string
	state      State
	x          Domain
	y          Domain
	elevations []float64
	transition *Transition
	draws      int
}

// NewProfileChart returns an Uninitialized chart.
func NewProfileChart(title string) *ProfileChart {
	return &ProfileChart{title: title}
}

// Init draws the chart for the first time.
func (c *ProfileChart) Init(profile models.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Uninitialized {
		return ErrAlreadyInitialized
	}

	c.x, c.y = computeDomains(profile)
	c.elevations = profile.Elevations()
	c.transition = nil
	c.state = Rendered
	c.draws++
	metrics.ChartDraws.WithLabelValues("init").Inc()
	if len(profile) == 0 {
		log.Println("[ProfileChart] Initialized with an empty profile, drawing empty axes")
	}
	return nil
}

// Update redraws the chart for profile with an eased transition. An empty
// profile leaves the chart unchanged.
func (c *ProfileChart) Update(profile models.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Rendered {
		return ErrNotInitialized
	}
	if len(profile) == 0 {
		log.Println("[ProfileChart] Skipping update with an empty profile")
		metrics.ChartDraws.WithLabelValues("skip").Inc()
		return nil
	}

	c.x, c.y = computeDomains(profile)
	c.elevations = profile.Elevations()
	c.transition = &Transition{
		Duration: config.CHART_TRANSITION_MILLISECONDS * time.Millisecond,
		Easing:   EasingCubicInOut,
		Targets:  []string{"line", "x-axis", "y-axis"},
	}
	c.draws++
	metrics.ChartDraws.WithLabelValues("update").Inc()
	return nil
}

// State returns the current state.
func (c *ProfileChart) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// XDomain returns the index extent currently drawn.
func (c *ProfileChart) XDomain() Domain {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.x
}

// YDomain returns the elevation extent currently drawn.
func (c *ProfileChart) YDomain() Domain {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.y
}

// Snapshot returns a copy of the drawn state.
func (c *ProfileChart) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{
		State:      c.state.String(),
		XDomain:    c.x,
		YDomain:    c.y,
		Elevations: append([]float64(nil), c.elevations...),
		Draws:      c.draws,
	}
	if c.transition != nil {
		t := *c.transition
		snap.Transition = &t
	}
	return snap
}

// Render writes the chart as an HTML page.
func (c *ProfileChart) Render(w io.Writer) error {
	snap := c.Snapshot()
	if snap.State != Rendered.String() {
		return ErrNotInitialized
	}

	yMin, yMax := axisRange(snap.YDomain)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.title,
			Width:     config.CHART_WIDTH,
			Height:    config.CHART_HEIGHT,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    c.title,
			Subtitle: fmt.Sprintf("%d samples", len(snap.Elevations)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "sample",
			Type: "value",
			Min:  snap.XDomain[0],
			Max:  snap.XDomain[1],
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "elevation (m)",
			Type: "value",
			Min:  yMin,
			Max:  yMax,
		}),
	)

	data := make([]opts.LineData, len(snap.Elevations))
	for i, e := range snap.Elevations {
		data[i] = opts.LineData{Value: []interface{}{i, e}}
	}
	line.AddSeries("elevation", data)

	return line.Render(w)
}

// axisRange orders d for the axis. Profiles entirely below the floor keep an
// inverted domain, which echarts cannot draw.
func axisRange(d Domain) (float64, float64) {
	if d[0] > d[1] {
		return d[1], d[0]
	}
	return d[0], d[1]
}

// computeDomains returns x = [0, len-1] and y = [floor, max elevation]. An empty
// profile yields x = [0, 0] and y = [floor, 0].
func computeDomains(profile models.Profile) (Domain, Domain) {
	max, ok := profile.MaxElevation()
	if !ok {
		return Domain{0, 0}, Domain{config.CHART_Y_FLOOR, 0}
	}
	return Domain{0, float64(len(profile) - 1)}, Domain{config.CHART_Y_FLOOR, max}
}
