package config

import (
	"os"
	"strconv"
)

// RoundNDigits is the emission rounding applied to report items.
// Internal sums are never rounded.
var RoundNDigits int32 = 9

func InitializeConfig() error {
	NewLoggerService()

	if v := os.Getenv("ROUND_NDIGITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			RoundNDigits = int32(n)
		}
	}

	if err := ConnectDatabase(); err != nil {
		return err
	}
	if err := NewCacheService(); err != nil {
		return err
	}
	if err := NewInfluxDB(); err != nil {
		return err
	}
	if err := ConnectNats(); err != nil {
		return err
	}

	return nil
}
