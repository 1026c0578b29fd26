package ebitenhost

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/solarlune/boneoverlay"
	"github.com/solarlune/boneoverlay/colors"
)

const (
	hudTextSize  = 13.0
	pingRingSize = 24.0
	groundExtent = 5
)

const helpText = `B: Toggle bones    L: Labels    F: Distance fade    D: Distance filter
O: Ortho / Perspective    Home: Frame bones    R: Reset settings
Right drag: Orbit    Wheel: Zoom    Click: Select    Shift+Click: Toggle
F1: Toggle this text    F4: Fullscreen    F12: Screenshot    Esc: Quit`

// Reload carries a freshly loaded scene (or the error that stopped it loading) to a running App.
type Reload struct {
	Scene *boneoverlay.Scene
	Err   error
}

// AppOptions configures a new App.
type AppOptions struct {
	Width, Height int
	// Store persists the overlay's settings; if nil, they only live in memory.
	Store  boneoverlay.PrefStore
	Logger *slog.Logger
	// Reloads, if set, is polled every tick for replacement scenes.
	Reloads <-chan Reload
}

// App is an ebiten.Game that shows a scene's bones through a boneoverlay.Session.
type App struct {
	Scene     *boneoverlay.Scene
	Camera    *boneoverlay.Camera
	Orbit     *OrbitCamera
	Session   *boneoverlay.Session
	Canvas    *Canvas
	Selection *Selection

	DrawHelp   bool
	Background boneoverlay.Color
	// OnUpdate, if set, runs at the start of every Update(); returning an error stops the game.
	OnUpdate func() error

	input   Input
	frames  boneoverlay.FrameCounter
	reloads <-chan Reload
	logger  *slog.Logger

	pending    *boneoverlay.Event
	dirty      bool
	screenshot bool
}

var _ ebiten.Game = (*App)(nil)

// NewApp creates an App showing the scene given.
func NewApp(scene *boneoverlay.Scene, options AppOptions) *App {

	if options.Width <= 0 || options.Height <= 0 {
		options.Width, options.Height = 1280, 720
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		Scene:      scene,
		Camera:     boneoverlay.NewCamera(options.Width, options.Height),
		Canvas:     NewCanvas(),
		Selection:  NewSelection(),
		DrawHelp:   true,
		Background: colors.DarkestGray(),
		reloads:    options.Reloads,
		logger:     logger,
		dirty:      true,
	}

	app.Orbit = NewOrbitCamera(app.Camera)

	app.Session = boneoverlay.NewSession(boneoverlay.Host{
		Graph:     scene,
		Clock:     &app.frames,
		Selection: app.Selection,
		Repainter: boneoverlay.RepaintFunc(app.Repaint),
		Store:     options.Store,
		Logger:    logger,
	})

	app.Session.Renderer().RepaintMode = boneoverlay.RepaintOnChange

	app.Selection.OnPing = func(id boneoverlay.NodeID) {
		app.logger.Info("pinged bone", "node", app.nodePath(id))
	}

	app.FrameBones()

	return app

}

// Repaint marks the App's screen as needing to be drawn again.
func (app *App) Repaint() {
	app.dirty = true
}

// SetScene swaps the scene the App is showing, keeping the camera where it is.
func (app *App) SetScene(scene *boneoverlay.Scene) {
	app.Scene = scene
	app.Session.SetGraph(scene)
	app.Selection.Prune(scene)
	app.logger.Info("scene loaded", "name", scene.Title, "nodes", len(scene.Nodes()))
}

// FrameBones points the camera at the scene's detected bones, or at every node if the overlay is off.
func (app *App) FrameBones() {

	nodes := app.Scene.Nodes()

	if app.Session.Enabled() {
		if bones := app.Session.Detector().DetectBones(); len(bones) > 0 {
			nodes = nodes[:0:0]
			for _, bone := range bones {
				nodes = append(nodes, bone.Node)
			}
		}
	}

	app.Orbit.Frame(app.Scene, nodes)
	app.Repaint()

}

func (app *App) Update() error {

	app.frames.Advance()

	if app.OnUpdate != nil {
		if err := app.OnUpdate(); err != nil {
			return err
		}
	}

	select {
	case reload := <-app.reloads:
		if reload.Err != nil {
			app.logger.Warn("could not reload scene", "error", reload.Err)
		} else if reload.Scene != nil {
			app.SetScene(reload.Scene)
		}
	default:
	}

	if err := app.handleKeys(); err != nil {
		return err
	}

	if app.Orbit.Update() {
		app.Repaint()
	}

	app.pending = mergeEvents(app.pending, app.input.Poll())
	if app.pending != nil {
		app.Repaint()
	}

	if app.Selection.Tick() {
		app.Repaint()
	}

	return nil

}

func (app *App) handleKeys() error {

	state := app.Session.State()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF4) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		app.screenshot = true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		app.DrawHelp = !app.DrawHelp
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		app.Session.Toggle()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		state.SetShowLabels(!state.ShowLabels())
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		state.SetDistanceFadeEnabled(!state.DistanceFadeEnabled())
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		state.SetEnableDistanceFilter(!state.EnableDistanceFilter())
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		state.ResetToDefaults()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		app.Camera.SetPerspective(!app.Camera.Perspective())
		app.Orbit.Apply()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		app.FrameBones()
	}

	if len(inpututil.AppendJustPressedKeys(nil)) > 0 {
		app.Repaint()
	}

	return nil

}

func (app *App) Draw(screen *ebiten.Image) {

	if !app.dirty {
		return
	}

	app.dirty = false

	screen.Fill(app.Background.ToNRGBA())

	app.Canvas.SetScreen(screen)

	app.drawGround()

	app.Session.OnViewGUI(boneoverlay.View{Camera: app.Camera, Canvas: app.Canvas, Event: app.pending})
	app.pending = nil

	app.drawPings()
	app.drawHUD()

	if app.screenshot {
		app.screenshot = false
		app.saveScreenshot(screen)
	}

}

// Layout keeps the camera's viewport the same size as the window.
func (app *App) Layout(w, h int) (int, int) {
	if cw, ch := app.Camera.Size(); cw != w || ch != h {
		app.Camera.Resize(w, h)
		app.Repaint()
	}
	return w, h
}

// Run opens a window and runs the App until it's closed, saving the overlay's settings on the way out.
func Run(app *App, title string) error {

	w, h := app.Camera.Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	// The App only redraws when something changed, so the last frame has to stick around.
	ebiten.SetScreenClearedEveryFrame(false)

	runErr := ebiten.RunGame(app)

	if err := app.Close(); err != nil {
		app.logger.Warn("could not save settings", "error", err)
	}

	return runErr

}

// Close shuts down the overlay session, saving its settings.
func (app *App) Close() error {
	return app.Session.Close()
}

// drawGround draws a grid on the XZ plane, for a sense of scale and direction.
func (app *App) drawGround() {

	color := colors.DarkGray()

	for i := -groundExtent; i <= groundExtent; i++ {
		f := float64(i)
		app.drawWorldLine(boneoverlay.NewVector(f, 0, -groundExtent), boneoverlay.NewVector(f, 0, groundExtent), color)
		app.drawWorldLine(boneoverlay.NewVector(-groundExtent, 0, f), boneoverlay.NewVector(groundExtent, 0, f), color)
	}

}

func (app *App) drawWorldLine(from, to boneoverlay.Vector, color boneoverlay.Color) {
	a := app.Camera.WorldToScreenPixels(from)
	b := app.Camera.WorldToScreenPixels(to)
	if a.Z <= 0 || b.Z <= 0 {
		return
	}
	app.Canvas.DrawLine(a.X, a.Y, b.X, b.Y, 1, color)
}

// drawPings draws a shrinking ring around each recently pinged node.
func (app *App) drawPings() {

	for _, id := range app.Selection.Pinged() {

		if !app.Scene.Alive(id) {
			continue
		}

		screen := app.Camera.WorldToScreenPixels(app.Scene.WorldPosition(id))
		if screen.Z <= 0 {
			continue
		}

		strength := app.Selection.PingStrength(id)
		app.Canvas.DrawRing(screen.X, screen.Y, 4+pingRingSize*strength, 2, colors.Yellow().MultiplyAlpha(strength))

	}

}

func (app *App) drawHUD() {

	lines := []string{
		fmt.Sprintf("%s    Scene: %s    FPS: %0.f", app.Session.Status(), app.Scene.Title, ebiten.ActualFPS()),
	}

	if app.Session.Enabled() {
		lines = append(lines, fmt.Sprintf("Excluded: %d    Selected: %d", app.Session.ExcludedCount(), len(app.Selection.Selected())))
	}

	if hovered := app.Session.Renderer().Hovered(); hovered != boneoverlay.NoNode {
		lines = append(lines, "Hovering: "+app.nodePath(hovered))
	}

	if app.DrawHelp {
		lines = append(lines, "", helpText)
	}

	app.Canvas.DrawText(strings.Join(lines, "\n"), 8, 8, hudTextSize, colors.LightGray())

}

func (app *App) nodePath(id boneoverlay.NodeID) string {
	if node := app.Scene.Node(id); node != nil {
		return node.Path()
	}
	return ""
}

func (app *App) saveScreenshot(screen *ebiten.Image) {

	name := "boneoverlay-" + time.Now().Format("2006-01-02-150405") + ".png"

	f, err := os.Create(name)
	if err != nil {
		app.logger.Warn("could not save screenshot", "error", err)
		return
	}
	defer f.Close()

	if err := png.Encode(f, screen); err != nil {
		app.logger.Warn("could not save screenshot", "error", err)
		return
	}

	app.logger.Info("saved screenshot", "file", name)

}
