package config

import "time"

// IntOr returns cfg.GetInt(key), or def when the value is not positive.
func IntOr(cfg Config, key string, def int) int {
	if cfg == nil {
		return def
	}
	if v := cfg.GetInt(key); v > 0 {
		return v
	}

	return def
}

// SecondOr returns cfg.GetSecond(key), or def when the value is not positive.
func SecondOr(cfg Config, key string, def time.Duration) time.Duration {
	if cfg == nil {
		return def
	}
	if v := cfg.GetSecond(key); v > 0 {
		return v
	}

	return def
}

// MinuteOr returns cfg.GetMinute(key), or def when the value is not positive.
func MinuteOr(cfg Config, key string, def time.Duration) time.Duration {
	if cfg == nil {
		return def
	}
	if v := cfg.GetMinute(key); v > 0 {
		return v
	}

	return def
}

// StringOr returns cfg.GetString(key), or def when the value is empty.
func StringOr(cfg Config, key, def string) string {
	if cfg == nil {
		return def
	}
	if v := cfg.GetString(key); v != "" {
		return v
	}

	return def
}
