package scoring

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = 42

func TestExtract(t *testing.T) {
	f := Extract(true, 8, strings.Repeat("a", 500), 30)
	assert.Equal(t, Features{1.0, 0.8, 0.5, 0.3}, f)

	f = Extract(false, 0, "Short", 5)
	assert.Equal(t, Features{0.0, 0.0, 0.005, 0.05}, f)
}

func TestTrainSeparatesObviousCases(t *testing.T) {
	m := Train(testSeed)

	// Unverified seller, no images, short description.
	suspicious := m.PredictProba(Extract(false, 0, "Short", 5))

	// Verified seller, many images, long description: clean.
	clean := m.PredictProba(Extract(true, 8, strings.Repeat("very long description ", 40), 3))

	assert.Less(t, clean, ViolationThreshold)
	assert.Greater(t, suspicious, clean)
}

func TestPredictProbaBounds(t *testing.T) {
	m := Train(testSeed)
	for _, f := range []Features{
		Extract(false, 0, "", 0),
		Extract(true, 10, strings.Repeat("d", 1000), 99),
		Extract(false, 5, strings.Repeat("d", 300), 50),
	} {
		p := m.PredictProba(f)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	a := Train(testSeed)
	b := Train(testSeed)
	assert.Equal(t, a.Weights, b.Weights)
	assert.Equal(t, a.Bias, b.Bias)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	trained := Train(testSeed)
	require.NoError(t, trained.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, trained.Weights, loaded.Weights)
	assert.Equal(t, trained.Bias, loaded.Bias)

	// The same input scores identically on both instances.
	f := Extract(false, 2, "Short description", 10)
	assert.Equal(t, trained.PredictProba(f), loaded.PredictProba(f))
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestLoadOrTrainCreatesMissingModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	m, err := LoadOrTrain(path, testSeed)
	require.NoError(t, err)
	require.NotNil(t, m)

	// Second call loads the persisted file and agrees with the first.
	again, err := LoadOrTrain(path, testSeed)
	require.NoError(t, err)
	assert.Equal(t, m.Weights, again.Weights)
}

func TestIsViolation(t *testing.T) {
	assert.True(t, IsViolation(0.5))
	assert.True(t, IsViolation(0.9))
	assert.False(t, IsViolation(0.49))
}
