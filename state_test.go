package boneoverlay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateDefaults(t *testing.T) {

	state := NewOverlayState(nil, nil)

	assert.False(t, state.Enabled())
	assert.True(t, state.EnableDistanceFilter())
	assert.Equal(t, 50.0, state.MaxRenderDistance())
	assert.Equal(t, 0.1, state.MinRenderDistance())
	assert.Equal(t, 30.0, state.MaxLabelRenderDistance())
	assert.Equal(t, 0.005, state.SphereSize())
	assert.Equal(t, DefaultBoneNamePatterns, state.BoneNamePatterns())
	assert.False(t, state.IncludeEmptyNodes())

}

func TestStateClampsMaxRenderDistance(t *testing.T) {

	state := NewOverlayState(nil, nil)

	state.SetMaxRenderDistance(5000)
	assert.Equal(t, 1000.0, state.MaxRenderDistance())

	state.SetMaxRenderDistance(-5)
	assert.Equal(t, 1.0, state.MaxRenderDistance())

}

func TestStateKeepsMinBelowMax(t *testing.T) {

	state := NewOverlayState(nil, nil)

	state.SetMinRenderDistance(20)
	require.Equal(t, 20.0, state.MinRenderDistance())

	// Lowering the max below the min pulls the min down with it.
	state.SetMaxRenderDistance(10)
	assert.Equal(t, 10.0, state.MaxRenderDistance())
	assert.Equal(t, 10.0, state.MinRenderDistance())

	// Raising the min above the max stops at the max.
	state.SetMinRenderDistance(500)
	assert.Equal(t, 10.0, state.MinRenderDistance())

	state.SetMinRenderDistance(-3)
	assert.Equal(t, 0.0, state.MinRenderDistance())

	for _, v := range []float64{-100, 0, 3, 999, 4000} {
		state.SetMaxRenderDistance(v)
		state.SetMinRenderDistance(v / 2)
		assert.LessOrEqual(t, state.MinRenderDistance(), state.MaxRenderDistance())
	}

}

func TestStateSkipsWritesWithinEpsilon(t *testing.T) {

	prefs := NewMemoryPrefs()
	state := NewOverlayState(prefs, nil)

	state.SetMaxRenderDistance(40)
	writes := prefs.Writes
	require.NotZero(t, writes)

	state.SetMaxRenderDistance(40.001)
	assert.Equal(t, writes, prefs.Writes, "a change smaller than the epsilon shouldn't persist anything")
	assert.Equal(t, 40.0, state.MaxRenderDistance())

	state.SetSphereSize(0.005 + 0.00001)
	assert.Equal(t, writes, prefs.Writes)

	state.SetShowLabels(true)
	assert.Equal(t, writes, prefs.Writes)

}

func TestStatePersistsWholeRecord(t *testing.T) {

	prefs := NewMemoryPrefs()
	state := NewOverlayState(prefs, nil)

	state.SetEnabled(true)

	// A single change writes every key, including ones that kept their defaults.
	assert.True(t, prefs.Has(KeyPrefix+"Enabled"))
	assert.True(t, prefs.Has(KeyPrefix+"MaxRenderDistance"))
	assert.True(t, prefs.Has(KeyPrefix+"NormalColor.a"))
	assert.True(t, prefs.Has(KeyPrefix+"BoneNamePatterns"))

	state.SetLineColor(NewColor(1, 2, -1, 0.5))
	state.SetBoneNamePatterns([]string{" Bone ", "", "TAIL", "bone"})

	reloaded := NewOverlayState(prefs, nil)
	assert.True(t, reloaded.Enabled())
	assert.Equal(t, NewColor(1, 1, 0, 0.5), reloaded.LineColor())
	assert.Equal(t, []string{"bone", "tail"}, reloaded.BoneNamePatterns())

}

func TestStateKeepsValueWhenStoreFails(t *testing.T) {

	prefs := NewMemoryPrefs()
	prefs.ReadOnly = true
	state := NewOverlayState(prefs, nil)

	state.SetLabelSize(20)
	assert.Equal(t, 20.0, state.LabelSize())
	assert.False(t, prefs.Has(KeyPrefix+"LabelSize"))

}

func TestStateResetToDefaults(t *testing.T) {

	prefs := NewMemoryPrefs()
	state := NewOverlayState(prefs, nil)

	changes := 0
	state.OnChange = func() { changes++ }

	state.SetEnabled(true)
	state.SetLineWidth(7)
	state.SetHoverColor(NewColor(1, 0, 0, 1))
	require.Equal(t, 3, changes)

	state.ResetToDefaults()
	assert.Equal(t, 4, changes)
	assert.Equal(t, DefaultSettings(), state.Settings())

	reloaded := NewOverlayState(prefs, nil)
	assert.Equal(t, DefaultSettings(), reloaded.Settings())

}

func TestStateSetByName(t *testing.T) {

	state := NewOverlayState(nil, nil)

	require.NoError(t, state.SetByName("ShowLabels", "false"))
	assert.False(t, state.ShowLabels())

	require.NoError(t, state.SetByName("LineWidth", "50"))
	assert.Equal(t, MaxLineWidth, state.LineWidth())

	require.NoError(t, state.SetByName("SelectedColor", "0, 0.5, 1, 1"))
	assert.Equal(t, NewColor(0, 0.5, 1, 1), state.SelectedColor())

	require.NoError(t, state.SetByName("MarkerScaleMax", "4"))
	min, max := state.MarkerScale()
	assert.Equal(t, 0.5, min)
	assert.Equal(t, 4.0, max)

	assert.Error(t, state.SetByName("LineWidth", "wide"))
	assert.Error(t, state.SetByName("HoverColor", "1,1"))
	assert.Error(t, state.SetByName("Nope", "1"))

}

func TestStateRejectsNonFiniteValues(t *testing.T) {

	prefs := NewMemoryPrefs()
	state := NewOverlayState(prefs, nil)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {

		writes := prefs.Writes

		state.SetMaxRenderDistance(v)
		state.SetMinRenderDistance(v)
		state.SetSphereSize(v)
		state.SetMarkerScale(v, v)
		state.SetNormalColor(NewColor(float32(v), 0, 0, 1))

		assert.Equal(t, 50.0, state.MaxRenderDistance())
		assert.Equal(t, 0.1, state.MinRenderDistance())
		assert.Equal(t, 0.005, state.SphereSize())
		min, max := state.MarkerScale()
		assert.Equal(t, 0.5, min)
		assert.Equal(t, 2.0, max)
		assert.Equal(t, DefaultSettings().NormalColor, state.NormalColor())
		assert.Equal(t, writes, prefs.Writes, "nothing is persisted")

	}

	assert.Error(t, state.SetByName("MinRenderDistance", "NaN"))
	assert.Error(t, state.SetByName("LineWidth", "+Inf"))
	assert.Error(t, state.SetByName("LabelColor", "1, NaN, 0, 1"))
	assert.Equal(t, 0.1, state.MinRenderDistance())

}

func TestStateLoadFallsBackOnNonFiniteValues(t *testing.T) {

	prefs := NewMemoryPrefs()
	require.NoError(t, prefs.SetFloat(KeyPrefix+"MaxRenderDistance", math.NaN()))
	require.NoError(t, prefs.SetFloat(KeyPrefix+"LabelSize", math.Inf(1)))
	require.NoError(t, prefs.SetFloat(KeyPrefix+"HoverColor.g", math.NaN()))

	state := NewOverlayState(prefs, nil)

	assert.Equal(t, 50.0, state.MaxRenderDistance())
	assert.Equal(t, 10.0, state.LabelSize())
	assert.Equal(t, DefaultSettings().HoverColor, state.HoverColor())

	assert.Equal(t, float32(0), NewColor(float32(math.NaN()), 2, -1, 0.5).Clamped().R)
	assert.Equal(t, NewColor(0, 1, 0, 0.5), NewColor(float32(math.NaN()), 2, -1, 0.5).Clamped())

}

func TestStateSetByNameMarkerScaleEnds(t *testing.T) {

	state := NewOverlayState(nil, nil)

	// A minimum above the current maximum stops at the maximum instead of becoming it.
	require.NoError(t, state.SetByName("MarkerScaleMin", "5"))
	min, max := state.MarkerScale()
	assert.Equal(t, 2.0, min)
	assert.Equal(t, 2.0, max)

	require.NoError(t, state.SetByName("MarkerScaleMax", "8"))
	require.NoError(t, state.SetByName("MarkerScaleMax", "1"))
	min, max = state.MarkerScale()
	assert.Equal(t, 2.0, min)
	assert.Equal(t, 2.0, max)

}
