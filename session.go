package boneoverlay

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Host bundles the services a host application provides to a Session.
type Host struct {
	Graph     SceneGraph
	Clock     FrameClock
	Selection Selection
	Repainter Repainter
	// Store persists the overlay's settings; if nil, the settings only live in memory.
	Store  PrefStore
	Logger *slog.Logger
}

// Session is the bone overlay for one host. It owns the overlay's settings, the bone detector, and the renderer, and should be
// driven by calling OnViewGUI() once per viewport tick. A Session isn't safe for concurrent use; all of its methods should be
// called from the host's UI thread.
type Session struct {
	id       uuid.UUID
	host     Host
	logger   *slog.Logger
	state    *OverlayState
	detector *BoneDetector
	renderer *OverlayRenderer
	watcher  *SelectionWatcher

	boneCount int
}

// NewSession creates a new Session for the host given, loading its settings from the host's store.
func NewSession(host Host) *Session {

	id := uuid.New()

	logger := host.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", id.String())

	if host.Clock == nil {
		host.Clock = &FrameCounter{}
	}

	state := NewOverlayState(host.Store, logger)
	detector := NewBoneDetector(host.Graph, host.Clock, state, logger)

	session := &Session{
		id:       id,
		host:     host,
		logger:   logger,
		state:    state,
		detector: detector,
		renderer: NewOverlayRenderer(host.Graph, host.Clock, state, detector, host.Selection, host.Repainter, logger),
	}

	session.watcher = NewSelectionWatcher(host.Selection, nil)

	logger.Info("bone overlay session started", "enabled", state.Enabled())

	return session

}

// ID returns the Session's unique identifier.
func (session *Session) ID() uuid.UUID {
	return session.id
}

// State returns the Session's persisted settings.
func (session *Session) State() *OverlayState {
	return session.state
}

// Detector returns the Session's BoneDetector.
func (session *Session) Detector() *BoneDetector {
	return session.detector
}

// Renderer returns the Session's OverlayRenderer.
func (session *Session) Renderer() *OverlayRenderer {
	return session.renderer
}

// Enabled returns whether the overlay is drawn.
func (session *Session) Enabled() bool {
	return session.state.Enabled()
}

// SetEnabled turns the overlay on or off. Turning it off drops every cache; either way the host is asked to repaint.
func (session *Session) SetEnabled(enabled bool) {

	if session.state.Enabled() == enabled {
		return
	}

	session.state.SetEnabled(enabled)

	if !enabled {
		session.renderer.Dispose()
		session.boneCount = 0
	}

	session.logger.Debug("bone overlay toggled", "enabled", enabled)
	session.repaint()

}

// Toggle flips whether the overlay is enabled.
func (session *Session) Toggle() {
	session.SetEnabled(!session.Enabled())
}

// SetGraph points the Session at another scene graph (after a reload, for example).
func (session *Session) SetGraph(graph SceneGraph) {
	session.host.Graph = graph
	session.detector.SetGraph(graph)
	session.renderer.SetGraph(graph)
	session.boneCount = 0
	session.repaint()
}

// OnViewGUI runs the overlay for a single tick of the view given: it detects bones (using the per-tick cache), draws them, and
// processes the view's pointer event.
func (session *Session) OnViewGUI(view View) {

	if session.watcher.Update() {
		session.repaint()
	}

	if !session.state.Enabled() {
		return
	}

	bones := session.detector.DetectBones()
	session.boneCount = len(bones)

	session.renderer.DrawBones(view, bones)

}

// BoneCount returns the number of bones found on the last tick.
func (session *Session) BoneCount() int {
	return session.boneCount
}

// ExcludedCount returns the number of hidden or unpickable nodes skipped on the last detection pass.
func (session *Session) ExcludedCount() int {
	return session.detector.ExcludedCount()
}

// Status returns a short status line for the overlay's toolbar.
func (session *Session) Status() string {
	if !session.state.Enabled() {
		return "Bones: off"
	}
	return fmt.Sprintf("Bones: %d", session.boneCount)
}

// Close disposes of the Session's caches and persists its settings one last time.
func (session *Session) Close() error {

	session.renderer.Dispose()

	if err := session.state.Save(); err != nil {
		return fmt.Errorf("boneoverlay: saving settings: %w", err)
	}

	session.logger.Info("bone overlay session closed")

	return nil

}

func (session *Session) repaint() {
	if session.host.Repainter != nil {
		session.host.Repainter.Repaint()
	}
}
