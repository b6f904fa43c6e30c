package domain

// CanonicalPoints is the number of landmarks per hand frame. MediaPipe
// hand tracking emits 21 points; shorter or longer frames are coerced.
const CanonicalPoints = 21

// DefaultCanonicalFrames is the temporal window length the trained
// sequence model expects.
const DefaultCanonicalFrames = 10

// Point is a single anatomical landmark. Z is optional on the wire and
// stays zero for 2D sources.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Frame holds one hand's landmarks for a single video frame.
type Frame []Point

// Sequence is an ordered temporal window of frames.
type Sequence []Frame

// Tensor is the model input: batch of 1, Frames() rows, Width() features.
type Tensor struct {
	Data [][]float32
}

// Frames returns the temporal length of the tensor.
func (t Tensor) Frames() int {
	return len(t.Data)
}

// Width returns the per-frame feature dimensionality.
func (t Tensor) Width() int {
	if len(t.Data) == 0 {
		return 0
	}
	return len(t.Data[0])
}
