package caption

import (
	"context"

	"gitlab.com/signcall-2025.net/internal/domain"
)

// ICaptionService turns landmark payloads into caption results.
type ICaptionService interface {
	// CaptionFrame classifies a single frame: one primary hand is selected
	// out of the given hands and tiled into a canonical sequence.
	CaptionFrame(ctx context.Context, hands []domain.Frame) (domain.Caption, error)

	// CaptionSequence classifies a temporal window of frames.
	CaptionSequence(ctx context.Context, frames []domain.Frame) (domain.Caption, error)

	// ModelLoaded reports whether the classification capability is usable.
	ModelLoaded() bool

	// ModelType reports the resolved label mapping mode.
	ModelType() domain.ModelType
}
