package secondary

import (
	"context"

	"gitlab.com/signcall-2025.net/internal/domain"
)

// Classifier is the opaque classification capability. It is assumed loaded
// at startup; a load failure disables inference but never routing.
type Classifier interface {
	// InputShape is the declared model input, e.g. [1 10 55].
	InputShape() []int
	// OutputShape is the declared model output, e.g. [1 31].
	OutputShape() []int
	// Classify returns one score per output class.
	Classify(ctx context.Context, tensor domain.Tensor) ([]float32, error)
}
