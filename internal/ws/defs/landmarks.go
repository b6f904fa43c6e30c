package defs

import (
	"bytes"
	"encoding/json"

	"gitlab.com/signcall-2025.net/internal/domain"
)

// LoosePoint accepts the landmark shapes clients actually send: an
// {x,y[,z]} object or an [x,y[,z]] array. Everything downstream works on
// domain.Point.
type LoosePoint domain.Point

func (p *LoosePoint) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var arr []float64
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return err
		}
		if len(arr) >= 2 {
			p.X, p.Y = arr[0], arr[1]
		}
		if len(arr) >= 3 {
			p.Z = arr[2]
		}
		return nil
	}

	var obj struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	p.X, p.Y, p.Z = obj.X, obj.Y, obj.Z
	return nil
}

// LooseHand is one hand's points in whatever shape they arrived.
type LooseHand []LoosePoint

// Frame converts to the domain representation without coercing length;
// the normalizer owns point-count coercion.
func (h LooseHand) Frame() domain.Frame {
	frame := make(domain.Frame, len(h))
	for i, p := range h {
		frame[i] = domain.Point(p)
	}
	return frame
}

// Frames converts a list of loose hands.
func Frames(hands []LooseHand) []domain.Frame {
	frames := make([]domain.Frame, len(hands))
	for i, h := range hands {
		frames[i] = h.Frame()
	}
	return frames
}
