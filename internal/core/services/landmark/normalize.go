// package landmark contains the pure normalization functions that turn
// heterogeneous pose payloads into canonical frames and sequences. No I/O,
// no shared state.
package landmark

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"gitlab.com/signcall-2025.net/internal/domain"
)

// scaleEpsilon guards the bounding-box normalization against degenerate
// (single-point) frames.
const scaleEpsilon = 1e-6

// ZeroFrame returns an all-zero frame of the canonical point count.
func ZeroFrame() domain.Frame {
	return make(domain.Frame, domain.CanonicalPoints)
}

// ToCanonicalPoints coerces a frame to exactly the canonical point count:
// missing points are zero-padded at the tail, extras are truncated.
func ToCanonicalPoints(frame domain.Frame) domain.Frame {
	out := make(domain.Frame, domain.CanonicalPoints)
	copy(out, frame)
	return out
}

// SelectPrimary picks one representative hand out of zero or more. The
// hand with the smallest mean x (leftmost on screen) wins. This is a
// heuristic, not anatomically meaningful: a right hand crossing the frame
// can displace the signing hand.
func SelectPrimary(hands []domain.Frame) domain.Frame {
	if len(hands) == 0 {
		return ZeroFrame()
	}

	bestIdx := 0
	bestMean := math.Inf(1)
	for i, hand := range hands {
		coerced := ToCanonicalPoints(hand)
		xs := make([]float64, len(coerced))
		for j, p := range coerced {
			xs[j] = p.X
		}
		meanX := stat.Mean(xs, nil)
		if meanX < bestMean {
			bestMean = meanX
			bestIdx = i
		}
	}

	return ToCanonicalPoints(hands[bestIdx])
}

// ToCanonicalSequence coerces a sequence to exactly n frames of canonical
// points. Longer inputs are sampled at n evenly spaced nearest indices to
// preserve temporal spread; shorter inputs repeat the last frame; a single
// frame is tiled n times; an empty input yields n zero frames.
func ToCanonicalSequence(frames []domain.Frame, n int) domain.Sequence {
	if n <= 0 {
		n = domain.DefaultCanonicalFrames
	}

	if len(frames) > n {
		span := make([]float64, n)
		floats.Span(span, 0, float64(len(frames)-1))
		out := make(domain.Sequence, n)
		for i, idx := range span {
			out[i] = ToCanonicalPoints(frames[int(math.Round(idx))])
		}
		return out
	}

	out := make(domain.Sequence, 0, n)
	for _, f := range frames {
		out = append(out, ToCanonicalPoints(f))
	}
	last := ZeroFrame()
	if len(out) > 0 {
		last = out[len(out)-1]
	}
	for len(out) < n {
		out = append(out, last)
	}
	return out
}

// AnchorNormalize translates a frame so the wrist (point 0) is the origin
// and scales by the bounding-box diagonal, then interleaves x,y,z into a
// flat 63-wide vector. Degenerate frames keep scale 1.0.
func AnchorNormalize(frame domain.Frame) []float32 {
	pts := ToCanonicalPoints(frame)
	wrist := pts[0]

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	zs := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.X - wrist.X
		ys[i] = p.Y - wrist.Y
		zs[i] = p.Z - wrist.Z
	}

	dx := floats.Max(xs) - floats.Min(xs)
	dy := floats.Max(ys) - floats.Min(ys)
	dz := floats.Max(zs) - floats.Min(zs)
	diag := math.Sqrt(dx*dx + dy*dy + dz*dz)
	scale := diag
	if scale < scaleEpsilon {
		scale = 1.0
	}

	out := make([]float32, 3*len(pts))
	for i := range pts {
		out[3*i] = float32(xs[i] / scale)
		out[3*i+1] = float32(ys[i] / scale)
		out[3*i+2] = float32(zs[i] / scale)
	}
	return out
}
