package caption

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/signcall-2025.net/internal/config"
	"gitlab.com/signcall-2025.net/internal/core/services/feature"
	"gitlab.com/signcall-2025.net/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Warn(msg string, args ...interface{})  {}

// fakeClassifier returns canned scores.
type fakeClassifier struct {
	scores []float32
	err    error
}

func (f *fakeClassifier) InputShape() []int  { return []int{1, 10, feature.VectorAngleWidth} }
func (f *fakeClassifier) OutputShape() []int { return []int{1, len(f.scores)} }

func (f *fakeClassifier) Classify(ctx context.Context, tensor domain.Tensor) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scores, nil
}

func newService(t *testing.T, clf *fakeClassifier, modelCfg *config.ModelConfig) *CaptionService {
	t.Helper()
	logger := nopLogger{}
	var extractor *feature.Extractor
	if clf != nil {
		extractor = feature.NewExtractor(clf, logger)
	} else {
		extractor = feature.NewExtractor(nil, logger)
	}
	hubCfg := &config.HubConfig{CanonicalFrames: 10}
	if clf == nil {
		return NewCaptionService(nil, extractor, modelCfg, hubCfg, logger)
	}
	return NewCaptionService(clf, extractor, modelCfg, hubCfg, logger)
}

func someHands() []domain.Frame {
	frame := make(domain.Frame, domain.CanonicalPoints)
	for i := range frame {
		frame[i] = domain.Point{X: float64(i) * 0.02, Y: float64(i) * 0.01}
	}
	return []domain.Frame{frame}
}

func TestLowConfidenceIsSuppressed(t *testing.T) {
	clf := &fakeClassifier{scores: []float32{0.79, 0.11, 0.05, 0.03, 0.02}}
	svc := newService(t, clf, &config.ModelConfig{Type: "auto", MinConfidence: 0.8})

	result, err := svc.CaptionFrame(context.Background(), someHands())
	require.NoError(t, err)

	assert.True(t, result.Suppressed)
	assert.Empty(t, result.Text)
	assert.InDelta(t, 0.79, result.Confidence, 1e-6)
	assert.Equal(t, 0, result.ClassIndex)
}

func TestConfidentResultMapsPhraseLabel(t *testing.T) {
	clf := &fakeClassifier{scores: []float32{0.81, 0.1, 0.05, 0.02, 0.02}}
	svc := newService(t, clf, &config.ModelConfig{Type: "auto", MinConfidence: 0.8})

	result, err := svc.CaptionFrame(context.Background(), someHands())
	require.NoError(t, err)

	assert.False(t, result.Suppressed)
	assert.Equal(t, "안녕하세요", result.Text)
}

func TestForceEmitBypassesFloor(t *testing.T) {
	clf := &fakeClassifier{scores: []float32{0.5, 0.3, 0.1, 0.05, 0.05}}
	svc := newService(t, clf, &config.ModelConfig{Type: "auto", MinConfidence: 0.8, ForceEmit: true})

	result, err := svc.CaptionFrame(context.Background(), someHands())
	require.NoError(t, err)

	assert.False(t, result.Suppressed)
	assert.Equal(t, "안녕하세요", result.Text)
}

func TestUnitModelHeuristic(t *testing.T) {
	scores := make([]float32, len(unitLabels))
	scores[0] = 0.95
	clf := &fakeClassifier{scores: scores}
	svc := newService(t, clf, &config.ModelConfig{Type: "auto", MinConfidence: 0.8})

	assert.Equal(t, domain.ModelTypeUnit, svc.ModelType())

	result, err := svc.CaptionFrame(context.Background(), someHands())
	require.NoError(t, err)
	assert.Equal(t, "ㄱ", result.Text)
}

func TestExplicitTypeOverridesHeuristic(t *testing.T) {
	// Five outputs look like the phrase model, but config says unit.
	clf := &fakeClassifier{scores: []float32{0.9, 0.04, 0.03, 0.02, 0.01}}
	svc := newService(t, clf, &config.ModelConfig{Type: "unit", MinConfidence: 0.8})

	assert.Equal(t, domain.ModelTypeUnit, svc.ModelType())
}

func TestUnknownPhraseIndexGetsPlaceholder(t *testing.T) {
	scores := make([]float32, 9)
	scores[7] = 0.9
	clf := &fakeClassifier{scores: scores}
	svc := newService(t, clf, &config.ModelConfig{Type: "phrase", MinConfidence: 0.8})

	result, err := svc.CaptionFrame(context.Background(), someHands())
	require.NoError(t, err)
	assert.Equal(t, "수어_7", result.Text)
}

func TestNoModelErrors(t *testing.T) {
	svc := newService(t, nil, &config.ModelConfig{Type: "auto", MinConfidence: 0.8})

	assert.False(t, svc.ModelLoaded())
	_, err := svc.CaptionFrame(context.Background(), someHands())
	assert.Error(t, err)
}

func TestCaptionSequenceUsesWindow(t *testing.T) {
	clf := &fakeClassifier{scores: []float32{0.9, 0.04, 0.03, 0.02, 0.01}}
	svc := newService(t, clf, &config.ModelConfig{Type: "auto", MinConfidence: 0.8})

	frames := make([]domain.Frame, 25)
	for i := range frames {
		frames[i] = someHands()[0]
	}

	result, err := svc.CaptionSequence(context.Background(), frames)
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요", result.Text)
}
