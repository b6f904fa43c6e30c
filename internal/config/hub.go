package config

import (
	"os"
	"strconv"
)

type HubConfig struct {
	WsAddress       string
	CanonicalFrames int
}

func NewHubConfig() *HubConfig {
	address := os.Getenv("WS_ADDR")
	if address == "" {
		address = ":8001"
	}
	frames, err := strconv.Atoi(os.Getenv("CANONICAL_FRAMES"))
	if err != nil || frames <= 0 {
		frames = 10
	}
	return &HubConfig{
		WsAddress:       address,
		CanonicalFrames: frames,
	}
}
