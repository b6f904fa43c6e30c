package model

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/signcall-2025.net/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Warn(msg string, args ...interface{})  {}

func writeDescriptor(t *testing.T, d descriptor) string {
	t.Helper()
	data, err := json.Marshal(d)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadAndClassify(t *testing.T) {
	// Two inputs, three classes. The second class gets all the weight of
	// input 0, so a [1, 0] tensor must win class 1.
	path := writeDescriptor(t, descriptor{
		InputShape:  []int{1, 1, 2},
		OutputShape: []int{1, 3},
		Weights: [][]float64{
			{0, 5, 0},
			{1, 0, 0},
		},
		Bias: []float64{0, 0, 0},
	})

	c, err := Load(path, nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2}, c.InputShape())
	assert.Equal(t, 3, c.NumClasses())

	scores, err := c.Classify(context.Background(), domain.Tensor{Data: [][]float32{{1, 0}}})
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.Greater(t, scores[1], scores[0])
	assert.Greater(t, scores[1], scores[2])

	var sum float32
	for _, s := range scores {
		sum += s
	}
	assert.InDelta(t, 1.0, float64(sum), 1e-5, "softmax scores sum to one")
}

func TestClassifyRejectsWrongSize(t *testing.T) {
	path := writeDescriptor(t, descriptor{
		InputShape:  []int{1, 1, 2},
		OutputShape: []int{1, 2},
		Weights:     [][]float64{{1, 0}, {0, 1}},
		Bias:        []float64{0, 0},
	})

	c, err := Load(path, nopLogger{})
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), domain.Tensor{Data: [][]float32{{1, 2, 3}}})
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"), nopLogger{})
	assert.Error(t, err)
}

func TestLoadRejectsBadDescriptors(t *testing.T) {
	garbled := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(garbled, []byte("{nope"), 0o644))
	_, err := Load(garbled, nopLogger{})
	assert.Error(t, err)

	_, err = Load(writeDescriptor(t, descriptor{}), nopLogger{})
	assert.Error(t, err, "missing shapes")

	_, err = Load(writeDescriptor(t, descriptor{
		InputShape:  []int{1, 1, 2},
		OutputShape: []int{1, 2},
		Weights:     [][]float64{{1, 0}, {1}},
	}), nopLogger{})
	assert.Error(t, err, "ragged weights")
}
