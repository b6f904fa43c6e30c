// package feature adapts canonical landmark sequences into the tensor the
// loaded model consumes.
package feature

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/core/ports/secondary"
	"gitlab.com/signcall-2025.net/internal/domain"
)

const (
	// VectorAngleWidth is the per-frame feature width of the trained
	// preprocessing: 20 bone vectors x 2 coordinates + 15 joint angles.
	VectorAngleWidth = 55

	// FlatWidth is the raw flattened coordinate width of one frame.
	FlatWidth = 2 * domain.CanonicalPoints
)

// Bone topology of the 21-point hand model: each bone runs parent -> child.
var (
	boneParent = []int{0, 1, 2, 3, 0, 5, 6, 7, 0, 9, 10, 11, 0, 13, 14, 15, 0, 17, 18, 19}
	boneChild  = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}

	// Adjacent bone pairs whose angle is part of the feature vector.
	angleFirst  = []int{0, 1, 2, 4, 5, 6, 8, 9, 10, 12, 13, 14, 16, 17, 18}
	angleSecond = []int{1, 2, 3, 5, 6, 7, 9, 10, 11, 13, 14, 15, 17, 18, 19}
)

// Extractor turns canonical sequences into model input tensors. The
// primary strategy reproduces the training-time vector-and-angle scheme;
// when the loaded model declares an input width the scheme cannot produce,
// extraction degrades to flattened raw coordinates padded to fit.
type Extractor struct {
	classifier secondary.Classifier
	logger     primary.Logger
	declared   int // model's declared per-frame width, 0 when unknown
	fallback   bool
}

// NewExtractor inspects the classifier's declared input shape and picks
// the extraction strategy once. A nil classifier keeps the primary scheme
// (routing still works without a model; inference will fail downstream).
func NewExtractor(classifier secondary.Classifier, logger primary.Logger) *Extractor {
	e := &Extractor{
		classifier: classifier,
		logger:     logger,
	}
	if classifier != nil {
		if shape := classifier.InputShape(); len(shape) >= 3 {
			e.declared = shape[len(shape)-1]
		}
	}
	if e.declared != 0 && e.declared != VectorAngleWidth {
		e.fallback = true
		logger.Warn("model input width does not match trained preprocessing, fallback strategy selected",
			"declared", e.declared, "trained", VectorAngleWidth)
	}
	return e
}

// Extract produces the model input tensor for a canonical sequence and
// reconciles the produced width against the declared one. A mismatch is
// logged, never fatal; the model call is the final arbiter.
func (e *Extractor) Extract(seq domain.Sequence) domain.Tensor {
	var tensor domain.Tensor
	if e.fallback {
		e.logger.Warn("using fallback preprocessing, accuracy may degrade", "width", e.declared)
		tensor = e.extractFlat(seq)
	} else {
		tensor = extractVectorAngle(seq)
	}

	if e.declared != 0 && tensor.Width() != e.declared {
		e.logger.Warn("feature dim mismatch", "got", tensor.Width(), "expected", e.declared)
	}
	return tensor
}

// extractVectorAngle computes per-frame unit bone vectors and the angles
// between adjacent bones, matching the model's training pipeline.
func extractVectorAngle(seq domain.Sequence) domain.Tensor {
	rows := make([][]float32, len(seq))
	for i, frame := range seq {
		rows[i] = vectorAngleFeatures(frame)
	}
	return domain.Tensor{Data: rows}
}

func vectorAngleFeatures(frame domain.Frame) []float32 {
	vx := make([]float64, len(boneParent))
	vy := make([]float64, len(boneParent))
	for b := range boneParent {
		dx := frame[boneChild[b]].X - frame[boneParent[b]].X
		dy := frame[boneChild[b]].Y - frame[boneParent[b]].Y
		norm := math.Hypot(dx, dy)
		if norm < 1e-9 {
			continue
		}
		vx[b] = dx / norm
		vy[b] = dy / norm
	}

	out := make([]float32, 0, VectorAngleWidth)
	for b := range boneParent {
		out = append(out, float32(vx[b]), float32(vy[b]))
	}
	for a := range angleFirst {
		i, j := angleFirst[a], angleSecond[a]
		dot := floats.Dot([]float64{vx[i], vy[i]}, []float64{vx[j], vy[j]})
		dot = math.Max(-1, math.Min(1, dot))
		out = append(out, float32(math.Acos(dot)*180/math.Pi))
	}
	return out
}

// extractFlat flattens raw x,y coordinates and zero-pads each row to the
// declared width.
func (e *Extractor) extractFlat(seq domain.Sequence) domain.Tensor {
	width := e.declared
	if width < FlatWidth {
		width = FlatWidth
	}
	rows := make([][]float32, len(seq))
	for i, frame := range seq {
		row := make([]float32, width)
		for j, p := range frame {
			if 2*j+1 >= width {
				break
			}
			row[2*j] = float32(p.X)
			row[2*j+1] = float32(p.Y)
		}
		rows[i] = row
	}
	return domain.Tensor{Data: rows}
}
