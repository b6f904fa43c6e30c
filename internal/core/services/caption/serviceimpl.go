package caption

import (
	"context"
	"fmt"

	"gitlab.com/signcall-2025.net/internal/config"
	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/core/ports/secondary"
	"gitlab.com/signcall-2025.net/internal/core/services/feature"
	"gitlab.com/signcall-2025.net/internal/core/services/landmark"
	"gitlab.com/signcall-2025.net/internal/domain"
	"gitlab.com/signcall-2025.net/internal/static/errs"
)

var _ ICaptionService = (*CaptionService)(nil)

// unitLabels maps class indices of the jamo model to Korean letter units.
var unitLabels = []string{
	"ㄱ", "ㄴ", "ㄷ", "ㄹ", "ㅁ", "ㅂ", "ㅅ", "ㅇ", "ㅈ", "ㅊ", "ㅋ", "ㅌ", "ㅍ", "ㅎ",
	"ㅏ", "ㅑ", "ㅓ", "ㅕ", "ㅗ", "ㅛ", "ㅜ", "ㅠ", "ㅡ", "ㅣ",
	"ㅐ", "ㅒ", "ㅔ", "ㅖ", "ㅢ", "ㅚ", "ㅟ",
}

// phraseLabels maps class indices of the phrase model to display strings.
var phraseLabels = map[int]string{
	0: "안녕하세요",
	1: "감사합니다",
	2: "죄송합니다",
	3: "좋아요",
	4: "싫어요",
}

// CaptionService implements ICaptionService on top of the classification
// capability.
type CaptionService struct {
	classifier      secondary.Classifier
	extractor       *feature.Extractor
	logger          primary.Logger
	modelType       domain.ModelType
	minConfidence   float64
	forceEmit       bool
	canonicalFrames int
}

// NewCaptionService resolves the model type from config, falling back to
// the output-width heuristic when set to auto. An explicit value that
// disagrees with the heuristic is kept and logged. classifier may be nil
// (model failed to load); captioning then errors but routing survives.
func NewCaptionService(
	classifier secondary.Classifier,
	extractor *feature.Extractor,
	modelCfg *config.ModelConfig,
	hubCfg *config.HubConfig,
	logger primary.Logger,
) *CaptionService {
	s := &CaptionService{
		classifier:      classifier,
		extractor:       extractor,
		logger:          logger,
		minConfidence:   modelCfg.MinConfidence,
		forceEmit:       modelCfg.ForceEmit,
		canonicalFrames: hubCfg.CanonicalFrames,
	}

	heuristic := domain.ModelTypePhrase
	if classifier != nil {
		if out := classifier.OutputShape(); len(out) > 0 && out[len(out)-1] == len(unitLabels) {
			heuristic = domain.ModelTypeUnit
		}
	}

	switch domain.ModelType(modelCfg.Type) {
	case domain.ModelTypeUnit, domain.ModelTypePhrase:
		s.modelType = domain.ModelType(modelCfg.Type)
		if s.modelType != heuristic && classifier != nil {
			logger.Warn("configured model type disagrees with output-width heuristic",
				"configured", s.modelType, "heuristic", heuristic)
		}
	default:
		s.modelType = heuristic
	}

	logger.Info("caption service ready", "modelType", s.modelType, "minConfidence", s.minConfidence)
	return s
}

// CaptionFrame classifies a single frame via the sequence path: the
// primary hand is tiled into a full canonical window.
func (s *CaptionService) CaptionFrame(ctx context.Context, hands []domain.Frame) (domain.Caption, error) {
	primaryHand := landmark.SelectPrimary(hands)
	return s.CaptionSequence(ctx, []domain.Frame{primaryHand})
}

// CaptionSequence classifies a temporal window of frames.
func (s *CaptionService) CaptionSequence(ctx context.Context, frames []domain.Frame) (domain.Caption, error) {
	if s.classifier == nil {
		return domain.Caption{}, errs.ModelNotLoaded
	}

	seq := landmark.ToCanonicalSequence(frames, s.canonicalFrames)
	tensor := s.extractor.Extract(seq)

	scores, err := s.classifier.Classify(ctx, tensor)
	if err != nil {
		return domain.Caption{}, fmt.Errorf("classification failed: %w", err)
	}
	if len(scores) == 0 {
		return domain.Caption{}, fmt.Errorf("classifier returned no scores")
	}

	bestIdx := 0
	for i, v := range scores {
		if v > scores[bestIdx] {
			bestIdx = i
		}
	}
	confidence := float64(scores[bestIdx])

	result := domain.Caption{
		Confidence: confidence,
		ClassIndex: bestIdx,
	}

	// Low-confidence results are suppressed, not errored, so downstream
	// does not render noisy captions.
	if confidence < s.minConfidence && !s.forceEmit {
		result.Suppressed = true
		return result, nil
	}

	result.Text = s.mapLabel(bestIdx)
	return result, nil
}

func (s *CaptionService) mapLabel(idx int) string {
	if s.modelType == domain.ModelTypeUnit {
		if idx >= 0 && idx < len(unitLabels) {
			return unitLabels[idx]
		}
		return ""
	}
	if label, ok := phraseLabels[idx]; ok {
		return label
	}
	return fmt.Sprintf("수어_%d", idx)
}

// ModelLoaded reports whether inference is available.
func (s *CaptionService) ModelLoaded() bool {
	return s.classifier != nil
}

// ModelType reports the resolved label mapping mode.
func (s *CaptionService) ModelType() domain.ModelType {
	return s.modelType
}
