package config

import (
	"os"
	"strconv"
	"time"
)

type PresenceSvcCfg struct {
	SweepInterval time.Duration
	InactiveAfter time.Duration
}

func NewPresenceSvcCfg() *PresenceSvcCfg {
	sweepIntervalSec := os.Getenv("PRESENCE_SWEEP_INTERVAL_SEC")
	inactiveAfterSec := os.Getenv("WORKER_INACTIVE_AFTER_SEC")
	varInt, err := strconv.Atoi(sweepIntervalSec)
	if err != nil {
		varInt = 60
	}
	varInt2, err := strconv.Atoi(inactiveAfterSec)
	if err != nil {
		varInt2 = 120
	}
	return &PresenceSvcCfg{
		SweepInterval: time.Duration(varInt) * time.Second,
		InactiveAfter: time.Duration(varInt2) * time.Second,
	}
}
