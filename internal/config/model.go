package config

import (
	"os"
	"strconv"
)

type ModelConfig struct {
	Path string
	// Type is "unit", "phrase" or "auto". With "auto" the output-width
	// heuristic decides; an explicit value that disagrees with the
	// heuristic is kept and logged.
	Type          string
	MinConfidence float64
	ForceEmit     bool
}

func NewModelConfig() *ModelConfig {
	path := os.Getenv("MODEL_PATH")
	if path == "" {
		path = "models/multi_hand_gesture_classifier.json"
	}
	modelType := os.Getenv("MODEL_TYPE")
	if modelType == "" {
		modelType = "auto"
	}
	minConf, err := strconv.ParseFloat(os.Getenv("MIN_CONFIDENCE"), 64)
	if err != nil {
		minConf = 0.8
	}
	return &ModelConfig{
		Path:          path,
		Type:          modelType,
		MinConfidence: minConf,
		ForceEmit:     os.Getenv("FORCE_CAPTIONS") == "true",
	}
}
