package checkpoint

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primer-ml/primer/internal/tensor"
)

func makeTensor(t *testing.T, shape tensor.Shape, fill float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	for i := range raw.AsFloat32() {
		raw.AsFloat32()[i] = fill + float32(i)
	}
	return raw
}

// TestSaveLoad_RoundTrip checks names, shapes, and values survive.
func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.pckp")

	state := map[string]*tensor.RawTensor{
		"0.weight": makeTensor(t, tensor.Shape{6, 1, 5, 5}, 0.5),
		"0.bias":   makeTensor(t, tensor.Shape{6}, -2),
		"4.weight": makeTensor(t, tensor.Shape{120, 256}, 1),
	}

	require.NoError(t, Save(path, state))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	for name, want := range state {
		got, ok := loaded[name]
		require.True(t, ok, "missing tensor %q", name)
		assert.True(t, got.Shape().Equal(want.Shape()))
		assert.Equal(t, want.AsFloat32(), got.AsFloat32())
	}
}

// TestSave_Deterministic checks identical states produce identical bytes.
func TestSave_Deterministic(t *testing.T) {
	dir := t.TempDir()
	state := map[string]*tensor.RawTensor{
		"b": makeTensor(t, tensor.Shape{3}, 1),
		"a": makeTensor(t, tensor.Shape{2, 2}, 2),
	}

	pathA := filepath.Join(dir, "a.pckp")
	pathB := filepath.Join(dir, "b.pckp")
	require.NoError(t, Save(pathA, state))
	require.NoError(t, Save(pathB, state))

	bytesA, err := os.ReadFile(pathA)
	require.NoError(t, err)
	bytesB, err := os.ReadFile(pathB)
	require.NoError(t, err)
	assert.Equal(t, bytesA, bytesB)
}

// TestLoad_CorruptedFile checks the checksum catches bit flips.
func TestLoad_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.pckp")
	require.NoError(t, Save(path, map[string]*tensor.RawTensor{
		"w": makeTensor(t, tensor.Shape{4}, 0),
	}))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	blob[len(blob)/2] ^= 0xFF
	require.NoError(t, os.WriteFile(path, blob, 0o644))

	_, err = Load(path)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

// TestLoad_UnknownDType checks that a checksum-valid file with a bogus
// dtype byte errors instead of panicking.
func TestLoad_UnknownDType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.pckp")
	require.NoError(t, Save(path, map[string]*tensor.RawTensor{
		"w": makeTensor(t, tensor.Shape{4}, 0),
	}))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)

	// magic + version + count + name len + name, then the dtype byte.
	dtypeOffset := 4 + 2 + 4 + 2 + len("w")
	blob[dtypeOffset] = 0xEE

	// Re-seal so only the dtype is wrong.
	body := blob[:len(blob)-sha256.Size]
	sum := sha256.Sum256(body)
	copy(blob[len(blob)-sha256.Size:], sum[:])
	require.NoError(t, os.WriteFile(path, blob, 0o644))

	_, err = Load(path)
	assert.ErrorContains(t, err, "unknown dtype")
}

// TestLoad_MissingFile checks the error path.
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.pckp"))
	assert.Error(t, err)
}
