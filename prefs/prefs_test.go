package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/solarlune/boneoverlay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRoundTrip(t *testing.T) {

	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")

	file, err := OpenFile(path)
	require.NoError(t, err)

	state := boneoverlay.NewOverlayState(file, nil)
	state.SetLineWidth(4)
	state.SetNormalColor(boneoverlay.NewColor(1, 0, 0, 1))
	state.SetBoneNamePatterns([]string{"Bone", "jnt"})

	_, err = os.Stat(path)
	require.NoError(t, err, "every change is flushed to disk")

	reopened, err := OpenFile(path)
	require.NoError(t, err)

	loaded := boneoverlay.NewOverlayState(reopened, nil)
	assert.Equal(t, 4.0, loaded.LineWidth())
	assert.True(t, loaded.NormalColor().Equals(boneoverlay.NewColor(1, 0, 0, 1)))
	assert.Equal(t, []string{"bone", "jnt"}, loaded.BoneNamePatterns())

	assert.Contains(t, reopened.Keys(), boneoverlay.KeyPrefix+"LineWidth")
	assert.NoError(t, reopened.Close())
	assert.ErrorIs(t, reopened.SetBool("x", true), ErrClosed)

}

func TestFileReadsHandWrittenTOML(t *testing.T) {

	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
"BoneOverlay.MaxRenderDistance" = 20
"BoneOverlay.ShowLabels" = false
"BoneOverlay.BoneNamePatterns" = "hip, knee"
`), 0o644))

	file, err := OpenFile(path)
	require.NoError(t, err)

	assert.Equal(t, 20.0, file.GetFloat(boneoverlay.KeyPrefix+"MaxRenderDistance", 0))
	assert.False(t, file.GetBool(boneoverlay.KeyPrefix+"ShowLabels", true))
	assert.Equal(t, 7.0, file.GetFloat("missing", 7))

	state := boneoverlay.NewOverlayState(file, nil)
	assert.Equal(t, []string{"hip", "knee"}, state.BoneNamePatterns())
	assert.Equal(t, 20.0, state.MaxRenderDistance())

}

func TestFileRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is = = not toml"), 0o644))
	_, err := OpenFile(path)
	assert.Error(t, err)
}

func TestSQLiteRoundTrip(t *testing.T) {

	path := filepath.Join(t.TempDir(), "prefs.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)

	state := boneoverlay.NewOverlayState(store, nil)
	state.SetMaxRenderDistance(5000)
	state.SetShowLabels(false)
	state.SetBoneNamePatterns([]string{"arm", "leg"})

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Contains(t, keys, boneoverlay.KeyPrefix+"MaxRenderDistance")

	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded := boneoverlay.NewOverlayState(reopened, nil)
	assert.Equal(t, boneoverlay.MaxMaxRenderDistance, loaded.MaxRenderDistance())
	assert.False(t, loaded.ShowLabels())
	assert.Equal(t, []string{"arm", "leg"}, loaded.BoneNamePatterns())

}

func TestSQLiteReadsPendingWrites(t *testing.T) {

	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SetFloat("a", 1.5))
	assert.Equal(t, 1.5, store.GetFloat("a", 0))

	require.NoError(t, store.Flush())
	require.NoError(t, store.SetString("b", "hello"))
	assert.Equal(t, "hello", store.GetString("b", ""))
	assert.Equal(t, 1.5, store.GetFloat("a", 0))
	assert.True(t, store.GetBool("missing", true))

}

func TestOpen(t *testing.T) {

	dir := t.TempDir()

	store, err := Open("sqlite", filepath.Join(dir, "prefs.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, store)
	require.NoError(t, store.Close())

	store, err = Open("toml", filepath.Join(dir, "prefs.toml"))
	require.NoError(t, err)
	assert.IsType(t, &File{}, store)

	_, err = Open("yaml", filepath.Join(dir, "prefs.yaml"))
	assert.Error(t, err)

	closed := &File{closed: true}
	assert.True(t, errors.Is(closed.Flush(), ErrClosed))

}
