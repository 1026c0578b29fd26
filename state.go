package boneoverlay

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
)

// KeyPrefix is prepended to every key the OverlayState writes to its PrefStore.
const KeyPrefix = "BoneOverlay."

// Value ranges for the clamped numeric settings.
const (
	MinMaxRenderDistance = 1.0
	MaxMaxRenderDistance = 1000.0
	MinLineWidth         = 0.1
	MaxLineWidth         = 10.0
	MinSphereSize        = 0.001
	MaxSphereSize        = 0.1
	MinLabelSize         = 5.0
	MaxLabelSize         = 30.0
	MinMarkerScale       = 0.1
	MaxMarkerScale       = 10.0

	distanceEpsilon = 0.01
	sizeEpsilon     = 0.0001
)

// DefaultBoneNamePatterns are the lower-case substrings that mark a node name as bone-like.
var DefaultBoneNamePatterns = []string{
	"bone", "joint", "jnt", "bip", "spine", "neck", "head", "arm", "leg", "foot", "hand", "finger",
	"toe", "clavicle", "shoulder", "elbow", "wrist", "hip", "knee", "ankle",
}

// Settings is a snapshot of every overlay setting.
type Settings struct {
	Enabled              bool
	ShowOptions          bool
	EnableDistanceFilter bool
	DistanceFadeEnabled  bool
	ShowLabels           bool
	IncludeEmptyNodes    bool // Match childless nodes against the name patterns too
	ConsumeEmptyClicks   bool // Whether a click on empty space is swallowed after clearing the selection
	DoubleClickPing      bool

	MinRenderDistance      float64
	MaxRenderDistance      float64
	MaxLabelRenderDistance float64
	LineWidth              float64 // In pixels
	SphereSize             float64 // Marker radius in world units, before distance scaling
	LabelSize              float64 // Label text size in points
	MarkerScaleMin         float64
	MarkerScaleMax         float64

	NormalColor   Color
	SelectedColor Color
	HoverColor    Color
	LineColor     Color
	LabelColor    Color

	BoneNamePatterns []string
}

// DefaultSettings returns the overlay's factory settings.
func DefaultSettings() Settings {
	return Settings{
		EnableDistanceFilter: true,
		DistanceFadeEnabled:  true,
		ShowLabels:           true,
		DoubleClickPing:      true,

		MinRenderDistance:      0.1,
		MaxRenderDistance:      50,
		MaxLabelRenderDistance: 30,
		LineWidth:              2,
		SphereSize:             0.005,
		LabelSize:              10,
		MarkerScaleMin:         0.5,
		MarkerScaleMax:         2,

		NormalColor:   NewColor(0.5, 0.5, 1, 0.8),
		SelectedColor: NewColor(1, 1, 0, 1),
		HoverColor:    NewColor(0, 1, 0, 1),
		LineColor:     NewColor(0.3, 0.3, 0.8, 0.5),
		LabelColor:    NewColor(0.4, 0.7, 1, 1),

		BoneNamePatterns: slices.Clone(DefaultBoneNamePatterns),
	}
}

// OverlayState holds the overlay's validated settings and writes them through to a PrefStore on every change.
// The in-memory values are authoritative: if the store fails to persist a write, the failure is logged and the new value is kept.
// OverlayState is not safe for concurrent use.
type OverlayState struct {
	store    PrefStore
	logger   *slog.Logger
	settings Settings
	// OnChange, if set, is called after any setting changes.
	OnChange func()
}

// NewOverlayState creates an OverlayState backed by the store given and loads every setting from it (falling back to
// defaults for missing keys). A nil store keeps settings in memory only; a nil logger uses slog.Default().
func NewOverlayState(store PrefStore, logger *slog.Logger) *OverlayState {

	if store == nil {
		store = NewMemoryPrefs()
	}

	if logger == nil {
		logger = slog.Default()
	}

	state := &OverlayState{
		store:  store,
		logger: logger,
	}

	state.Load()

	return state

}

// Settings returns a copy of the current settings.
func (state *OverlayState) Settings() Settings {
	s := state.settings
	s.BoneNamePatterns = slices.Clone(s.BoneNamePatterns)
	return s
}

// Load re-reads every setting from the store, clamping anything out of range. It doesn't write back.
func (state *OverlayState) Load() {

	def := DefaultSettings()
	store := state.store
	s := Settings{}

	s.Enabled = store.GetBool(KeyPrefix+"Enabled", def.Enabled)
	s.ShowOptions = store.GetBool(KeyPrefix+"ShowOptions", def.ShowOptions)
	s.EnableDistanceFilter = store.GetBool(KeyPrefix+"EnableDistanceFilter", def.EnableDistanceFilter)
	s.DistanceFadeEnabled = store.GetBool(KeyPrefix+"DistanceFadeEnabled", def.DistanceFadeEnabled)
	s.ShowLabels = store.GetBool(KeyPrefix+"ShowLabels", def.ShowLabels)
	s.IncludeEmptyNodes = store.GetBool(KeyPrefix+"IncludeEmptyNodes", def.IncludeEmptyNodes)
	s.ConsumeEmptyClicks = store.GetBool(KeyPrefix+"ConsumeEmptyClicks", def.ConsumeEmptyClicks)
	s.DoubleClickPing = store.GetBool(KeyPrefix+"DoubleClickPing", def.DoubleClickPing)

	s.MaxRenderDistance = clamp(loadFloat(store, "MaxRenderDistance", def.MaxRenderDistance), MinMaxRenderDistance, MaxMaxRenderDistance)
	s.MinRenderDistance = clamp(loadFloat(store, "MinRenderDistance", def.MinRenderDistance), 0, s.MaxRenderDistance)
	s.MaxLabelRenderDistance = clamp(loadFloat(store, "MaxLabelRenderDistance", def.MaxLabelRenderDistance), MinMaxRenderDistance, MaxMaxRenderDistance)
	s.LineWidth = clamp(loadFloat(store, "LineWidth", def.LineWidth), MinLineWidth, MaxLineWidth)
	s.SphereSize = clamp(loadFloat(store, "SphereSize", def.SphereSize), MinSphereSize, MaxSphereSize)
	s.LabelSize = clamp(loadFloat(store, "LabelSize", def.LabelSize), MinLabelSize, MaxLabelSize)
	s.MarkerScaleMin = clamp(loadFloat(store, "MarkerScaleMin", def.MarkerScaleMin), MinMarkerScale, MaxMarkerScale)
	s.MarkerScaleMax = clamp(loadFloat(store, "MarkerScaleMax", def.MarkerScaleMax), s.MarkerScaleMin, MaxMarkerScale)

	s.NormalColor = loadColor(store, "NormalColor", def.NormalColor)
	s.SelectedColor = loadColor(store, "SelectedColor", def.SelectedColor)
	s.HoverColor = loadColor(store, "HoverColor", def.HoverColor)
	s.LineColor = loadColor(store, "LineColor", def.LineColor)
	s.LabelColor = loadColor(store, "LabelColor", def.LabelColor)

	s.BoneNamePatterns = NormalizePatterns(strings.Split(store.GetString(KeyPrefix+"BoneNamePatterns", strings.Join(def.BoneNamePatterns, ",")), ","))

	state.settings = s

}

// loadFloat reads a float setting, falling back to the default if the stored value is NaN or infinite.
func loadFloat(store PrefStore, name string, def float64) float64 {
	if v := store.GetFloat(KeyPrefix+name, def); finite(v) {
		return v
	}
	return def
}

func loadColor(store PrefStore, name string, def Color) Color {
	return Color{
		R: float32(loadFloat(store, name+".r", float64(def.R))),
		G: float32(loadFloat(store, name+".g", float64(def.G))),
		B: float32(loadFloat(store, name+".b", float64(def.B))),
		A: float32(loadFloat(store, name+".a", float64(def.A))),
	}.Clamped()
}

// Save writes every setting to the store. The first error encountered is returned, but every key is still attempted.
func (state *OverlayState) Save() error {

	s := state.settings
	store := state.store
	var firstErr error

	check := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	check(store.SetBool(KeyPrefix+"Enabled", s.Enabled))
	check(store.SetBool(KeyPrefix+"ShowOptions", s.ShowOptions))
	check(store.SetBool(KeyPrefix+"EnableDistanceFilter", s.EnableDistanceFilter))
	check(store.SetBool(KeyPrefix+"DistanceFadeEnabled", s.DistanceFadeEnabled))
	check(store.SetBool(KeyPrefix+"ShowLabels", s.ShowLabels))
	check(store.SetBool(KeyPrefix+"IncludeEmptyNodes", s.IncludeEmptyNodes))
	check(store.SetBool(KeyPrefix+"ConsumeEmptyClicks", s.ConsumeEmptyClicks))
	check(store.SetBool(KeyPrefix+"DoubleClickPing", s.DoubleClickPing))

	check(store.SetFloat(KeyPrefix+"MaxRenderDistance", s.MaxRenderDistance))
	check(store.SetFloat(KeyPrefix+"MinRenderDistance", s.MinRenderDistance))
	check(store.SetFloat(KeyPrefix+"MaxLabelRenderDistance", s.MaxLabelRenderDistance))
	check(store.SetFloat(KeyPrefix+"LineWidth", s.LineWidth))
	check(store.SetFloat(KeyPrefix+"SphereSize", s.SphereSize))
	check(store.SetFloat(KeyPrefix+"LabelSize", s.LabelSize))
	check(store.SetFloat(KeyPrefix+"MarkerScaleMin", s.MarkerScaleMin))
	check(store.SetFloat(KeyPrefix+"MarkerScaleMax", s.MarkerScaleMax))

	for _, c := range []struct {
		name  string
		color Color
	}{
		{"NormalColor", s.NormalColor},
		{"SelectedColor", s.SelectedColor},
		{"HoverColor", s.HoverColor},
		{"LineColor", s.LineColor},
		{"LabelColor", s.LabelColor},
	} {
		check(store.SetFloat(KeyPrefix+c.name+".r", float64(c.color.R)))
		check(store.SetFloat(KeyPrefix+c.name+".g", float64(c.color.G)))
		check(store.SetFloat(KeyPrefix+c.name+".b", float64(c.color.B)))
		check(store.SetFloat(KeyPrefix+c.name+".a", float64(c.color.A)))
	}

	check(store.SetString(KeyPrefix+"BoneNamePatterns", strings.Join(s.BoneNamePatterns, ",")))

	if flusher, ok := store.(Flusher); ok {
		check(flusher.Flush())
	}

	return firstErr

}

// changed persists the whole record after a mutation. Persistence failures are logged and otherwise ignored.
func (state *OverlayState) changed() {
	if err := state.Save(); err != nil {
		state.logger.Warn("failed to persist bone overlay settings", "err", err)
	}
	if state.OnChange != nil {
		state.OnChange()
	}
}

// ResetToDefaults restores the factory settings and persists them.
func (state *OverlayState) ResetToDefaults() {
	state.settings = DefaultSettings()
	state.changed()
}

func (state *OverlayState) setBool(field *bool, value bool) {
	if *field == value {
		return
	}
	*field = value
	state.changed()
}

// setFloat clamps and stores the value, returning whether the field changed. Non-finite values are dropped.
func (state *OverlayState) setFloat(field *float64, value, min, max, eps float64) bool {
	if !finite(value) {
		state.logger.Warn("ignoring non-finite bone overlay setting", "value", value)
		return false
	}
	value = clamp(value, min, max)
	if math.Abs(*field-value) < eps {
		return false
	}
	*field = value
	return true
}

func (state *OverlayState) setColor(field *Color, value Color) {
	if !value.Finite() {
		state.logger.Warn("ignoring non-finite bone overlay color", "color", value)
		return
	}
	value = value.Clamped()
	if field.Equals(value) {
		return
	}
	*field = value
	state.changed()
}

func (state *OverlayState) Enabled() bool { return state.settings.Enabled }

// SetEnabled turns the overlay on or off.
func (state *OverlayState) SetEnabled(enabled bool) { state.setBool(&state.settings.Enabled, enabled) }

func (state *OverlayState) ShowOptions() bool { return state.settings.ShowOptions }

func (state *OverlayState) SetShowOptions(show bool) { state.setBool(&state.settings.ShowOptions, show) }

func (state *OverlayState) EnableDistanceFilter() bool { return state.settings.EnableDistanceFilter }

func (state *OverlayState) SetEnableDistanceFilter(enabled bool) {
	state.setBool(&state.settings.EnableDistanceFilter, enabled)
}

func (state *OverlayState) DistanceFadeEnabled() bool { return state.settings.DistanceFadeEnabled }

func (state *OverlayState) SetDistanceFadeEnabled(enabled bool) {
	state.setBool(&state.settings.DistanceFadeEnabled, enabled)
}

func (state *OverlayState) ShowLabels() bool { return state.settings.ShowLabels }

func (state *OverlayState) SetShowLabels(show bool) { state.setBool(&state.settings.ShowLabels, show) }

func (state *OverlayState) IncludeEmptyNodes() bool { return state.settings.IncludeEmptyNodes }

// SetIncludeEmptyNodes sets whether childless nodes whose names match a bone pattern count as bones.
func (state *OverlayState) SetIncludeEmptyNodes(include bool) {
	state.setBool(&state.settings.IncludeEmptyNodes, include)
}

func (state *OverlayState) ConsumeEmptyClicks() bool { return state.settings.ConsumeEmptyClicks }

// SetConsumeEmptyClicks sets whether a click on empty space is consumed after it clears the selection. When false, the
// host's own click handling still sees the event.
func (state *OverlayState) SetConsumeEmptyClicks(consume bool) {
	state.setBool(&state.settings.ConsumeEmptyClicks, consume)
}

func (state *OverlayState) DoubleClickPing() bool { return state.settings.DoubleClickPing }

func (state *OverlayState) SetDoubleClickPing(ping bool) {
	state.setBool(&state.settings.DoubleClickPing, ping)
}

func (state *OverlayState) MinRenderDistance() float64 { return state.settings.MinRenderDistance }

// SetMinRenderDistance sets the nearest distance bones are drawn at, clamped to [0, MaxRenderDistance].
func (state *OverlayState) SetMinRenderDistance(distance float64) {
	if state.setFloat(&state.settings.MinRenderDistance, distance, 0, state.settings.MaxRenderDistance, distanceEpsilon) {
		state.changed()
	}
}

func (state *OverlayState) MaxRenderDistance() float64 { return state.settings.MaxRenderDistance }

// SetMaxRenderDistance sets the farthest distance bones are drawn at, clamped to [1, 1000]. If the new maximum is below the current
// minimum, the minimum is lowered to match.
func (state *OverlayState) SetMaxRenderDistance(distance float64) {
	s := &state.settings
	if state.setFloat(&s.MaxRenderDistance, distance, MinMaxRenderDistance, MaxMaxRenderDistance, distanceEpsilon) {
		if s.MinRenderDistance > s.MaxRenderDistance {
			s.MinRenderDistance = s.MaxRenderDistance
		}
		state.changed()
	}
}

func (state *OverlayState) MaxLabelRenderDistance() float64 {
	return state.settings.MaxLabelRenderDistance
}

// SetMaxLabelRenderDistance sets the farthest distance labels are drawn at, clamped to [1, 1000].
func (state *OverlayState) SetMaxLabelRenderDistance(distance float64) {
	if state.setFloat(&state.settings.MaxLabelRenderDistance, distance, MinMaxRenderDistance, MaxMaxRenderDistance, distanceEpsilon) {
		state.changed()
	}
}

func (state *OverlayState) LineWidth() float64 { return state.settings.LineWidth }

func (state *OverlayState) SetLineWidth(width float64) {
	if state.setFloat(&state.settings.LineWidth, width, MinLineWidth, MaxLineWidth, distanceEpsilon) {
		state.changed()
	}
}

func (state *OverlayState) SphereSize() float64 { return state.settings.SphereSize }

func (state *OverlayState) SetSphereSize(size float64) {
	if state.setFloat(&state.settings.SphereSize, size, MinSphereSize, MaxSphereSize, sizeEpsilon) {
		state.changed()
	}
}

func (state *OverlayState) LabelSize() float64 { return state.settings.LabelSize }

func (state *OverlayState) SetLabelSize(size float64) {
	if state.setFloat(&state.settings.LabelSize, size, MinLabelSize, MaxLabelSize, distanceEpsilon) {
		state.changed()
	}
}

// MarkerScale returns the minimum and maximum factor a marker's projected size can be scaled by to keep it legible.
func (state *OverlayState) MarkerScale() (min, max float64) {
	return state.settings.MarkerScaleMin, state.settings.MarkerScaleMax
}

// SetMarkerScale sets the marker scale range; both ends are clamped to [0.1, 10] and swapped if given in the wrong order.
func (state *OverlayState) SetMarkerScale(min, max float64) {
	if min > max {
		min, max = max, min
	}
	s := &state.settings
	a := state.setFloat(&s.MarkerScaleMin, min, MinMarkerScale, MaxMarkerScale, distanceEpsilon)
	b := state.setFloat(&s.MarkerScaleMax, max, MinMarkerScale, MaxMarkerScale, distanceEpsilon)
	if a || b {
		state.changed()
	}
}

func (state *OverlayState) NormalColor() Color { return state.settings.NormalColor }

func (state *OverlayState) SetNormalColor(color Color) {
	state.setColor(&state.settings.NormalColor, color)
}

func (state *OverlayState) SelectedColor() Color { return state.settings.SelectedColor }

func (state *OverlayState) SetSelectedColor(color Color) {
	state.setColor(&state.settings.SelectedColor, color)
}

func (state *OverlayState) HoverColor() Color { return state.settings.HoverColor }

func (state *OverlayState) SetHoverColor(color Color) {
	state.setColor(&state.settings.HoverColor, color)
}

func (state *OverlayState) LineColor() Color { return state.settings.LineColor }

func (state *OverlayState) SetLineColor(color Color) {
	state.setColor(&state.settings.LineColor, color)
}

func (state *OverlayState) LabelColor() Color { return state.settings.LabelColor }

func (state *OverlayState) SetLabelColor(color Color) {
	state.setColor(&state.settings.LabelColor, color)
}

// BoneNamePatterns returns a copy of the ordered list of lower-case name patterns.
func (state *OverlayState) BoneNamePatterns() []string {
	return slices.Clone(state.settings.BoneNamePatterns)
}

// SetBoneNamePatterns replaces the name patterns. Patterns are trimmed and lower-cased, and blank ones are dropped.
func (state *OverlayState) SetBoneNamePatterns(patterns []string) {
	patterns = NormalizePatterns(patterns)
	if slices.Equal(patterns, state.settings.BoneNamePatterns) {
		return
	}
	state.settings.BoneNamePatterns = patterns
	state.changed()
}

// NormalizePatterns trims and lower-cases each pattern, dropping blank entries and duplicates while keeping order.
func NormalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// SetByName sets a setting from its persisted key name (without KeyPrefix) and a string value, as typed on a command line.
// Colors take four comma-separated components; patterns take a comma-separated list.
func (state *OverlayState) SetByName(name, value string) error {

	parseBool := func(apply func(bool)) error {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", name, err)
		}
		apply(v)
		return nil
	}

	parseFloat := func(apply func(float64)) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("setting %s: %w", name, err)
		}
		if !finite(v) {
			return fmt.Errorf("setting %s: %q is not a finite number", name, value)
		}
		apply(v)
		return nil
	}

	parseColor := func(apply func(Color)) error {
		parts := strings.Split(value, ",")
		if len(parts) != 4 {
			return fmt.Errorf("setting %s: expected r,g,b,a but got %q", name, value)
		}
		var comps [4]float32
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
			if err != nil {
				return fmt.Errorf("setting %s: %w", name, err)
			}
			if !finite(v) {
				return fmt.Errorf("setting %s: %q is not a finite number", name, p)
			}
			comps[i] = float32(v)
		}
		apply(NewColor(comps[0], comps[1], comps[2], comps[3]))
		return nil
	}

	switch name {
	case "Enabled":
		return parseBool(state.SetEnabled)
	case "ShowOptions":
		return parseBool(state.SetShowOptions)
	case "EnableDistanceFilter":
		return parseBool(state.SetEnableDistanceFilter)
	case "DistanceFadeEnabled":
		return parseBool(state.SetDistanceFadeEnabled)
	case "ShowLabels":
		return parseBool(state.SetShowLabels)
	case "IncludeEmptyNodes":
		return parseBool(state.SetIncludeEmptyNodes)
	case "ConsumeEmptyClicks":
		return parseBool(state.SetConsumeEmptyClicks)
	case "DoubleClickPing":
		return parseBool(state.SetDoubleClickPing)
	case "MinRenderDistance":
		return parseFloat(state.SetMinRenderDistance)
	case "MaxRenderDistance":
		return parseFloat(state.SetMaxRenderDistance)
	case "MaxLabelRenderDistance":
		return parseFloat(state.SetMaxLabelRenderDistance)
	case "LineWidth":
		return parseFloat(state.SetLineWidth)
	case "SphereSize":
		return parseFloat(state.SetSphereSize)
	case "LabelSize":
		return parseFloat(state.SetLabelSize)
	case "MarkerScaleMin":
		// Only the named end moves; it stops at the other end instead of swapping with it.
		return parseFloat(func(v float64) {
			state.SetMarkerScale(min(v, state.settings.MarkerScaleMax), state.settings.MarkerScaleMax)
		})
	case "MarkerScaleMax":
		return parseFloat(func(v float64) {
			state.SetMarkerScale(state.settings.MarkerScaleMin, max(v, state.settings.MarkerScaleMin))
		})
	case "NormalColor":
		return parseColor(state.SetNormalColor)
	case "SelectedColor":
		return parseColor(state.SetSelectedColor)
	case "HoverColor":
		return parseColor(state.SetHoverColor)
	case "LineColor":
		return parseColor(state.SetLineColor)
	case "LabelColor":
		return parseColor(state.SetLabelColor)
	case "BoneNamePatterns":
		state.SetBoneNamePatterns(strings.Split(value, ","))
		return nil
	}

	return fmt.Errorf("unknown setting %q", name)

}
