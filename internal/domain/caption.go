package domain

// ModelType distinguishes what a class index maps to.
type ModelType string

const (
	// ModelTypeUnit outputs a minimal linguistic unit (jamo) meant for
	// client-side composition.
	ModelTypeUnit ModelType = "unit"
	// ModelTypePhrase outputs a full display phrase.
	ModelTypePhrase ModelType = "phrase"
	// ModelTypeAuto defers to the output-width heuristic at load time.
	ModelTypeAuto ModelType = "auto"
)

// Caption is the shaped result of one inference call.
type Caption struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	ClassIndex int     `json:"class_index"`
	// Suppressed is set when the confidence floor swallowed the label.
	Suppressed bool `json:"-"`
}
