// Package editor is the editable map rectangle that drives the profile pipeline.
package editor

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"profile-server/models"
)

var (
	ErrNotEditable  = errors.New("rectangle is neither editable nor draggable")
	ErrNotResizable = errors.New("rectangle is draggable but not editable, size must not change")
)

// sizeTolerance absorbs float noise when a drag moves both edges by the same offset.
const sizeTolerance = 1e-9

// RegionEditor is what the profile pipeline needs from the map widget.
type RegionEditor interface {
	// OnBoundsChanged registers a listener called after every settled change.
	// Listeners get no payload and read the bounds with GetBounds.
	OnBoundsChanged(listener func())
	GetBounds() models.Bounds
	ShowInfo(content string, anchor models.LatLng)
}

// InfoWindow is the popup shown on the map.
type InfoWindow struct {
	Content string        `json:"content"`
	Anchor  models.LatLng `json:"anchor"`
	Open    bool          `json:"open"`
}

// Rectangle is an in-process editable rectangle.
type Rectangle struct {
	mu        sync.RWMutex
	container string
	bounds    models.Bounds
	editable  bool
	draggable bool
	listeners []func()
	info      InfoWindow
}

// NewRectangle places a rectangle with initial bounds in container.
func NewRectangle(container string, initial models.Bounds, editable, draggable bool) *Rectangle {
	log.Printf("[Rectangle] Created in %q with %s (editable=%v draggable=%v)", container, initial, editable, draggable)
	return &Rectangle{
		container: container,
		bounds:    initial,
		editable:  editable,
		draggable: draggable,
	}
}

func (r *Rectangle) OnBoundsChanged(listener func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Rectangle) GetBounds() models.Bounds {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bounds
}

func (r *Rectangle) ShowInfo(content string, anchor models.LatLng) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info = InfoWindow{Content: content, Anchor: anchor, Open: true}
}

// Info returns the info window as last shown.
func (r *Rectangle) Info() InfoWindow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

// Container returns the name of the element the rectangle was created in.
func (r *Rectangle) Container() string {
	return r.container
}

// SetBounds applies a settled user change and notifies listeners. Listeners
// run after the lock is released so they can call back into the rectangle.
func (r *Rectangle) SetBounds(b models.Bounds) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid bounds: %w", err)
	}

	r.mu.Lock()
	if !r.editable && !r.draggable {
		r.mu.Unlock()
		return ErrNotEditable
	}
	if !r.editable && resized(r.bounds, b) {
		r.mu.Unlock()
		return ErrNotResizable
	}
	if r.bounds == b {
		r.mu.Unlock()
		return nil
	}
	r.bounds = b
	listeners := append([]func(){}, r.listeners...)
	r.mu.Unlock()

	for _, listener := range listeners {
		listener()
	}
	return nil
}

func resized(from, to models.Bounds) bool {
	dh := (to.North - to.South) - (from.North - from.South)
	dw := (to.East - to.West) - (from.East - from.West)
	return dh > sizeTolerance || dh < -sizeTolerance || dw > sizeTolerance || dw < -sizeTolerance
}
