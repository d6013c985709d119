// SPDX-License-Identifier: MIT

package ratelimit

import "time"

// Preset names.
const (
	PresetAuth   = "auth"
	PresetCreate = "create"
	PresetRead   = "read"
	PresetUpload = "upload"
)

var (
	// AuthConfig guards authentication-like endpoints: 5 per 15 minutes.
	AuthConfig = Config{
		Name:        PresetAuth,
		Window:      15 * time.Minute,
		MaxRequests: 5,
		Message:     "Too many authentication attempts, please try again later.",
	}
	// CreateConfig guards resource creation: 10 per minute.
	CreateConfig = Config{
		Name:        PresetCreate,
		Window:      time.Minute,
		MaxRequests: 10,
		Message:     "Too many requests, please slow down.",
	}
	// ReadConfig guards reads: 100 per minute.
	ReadConfig = Config{
		Name:        PresetRead,
		Window:      time.Minute,
		MaxRequests: 100,
		Message:     "Too many requests, please try again later.",
	}
	// UploadConfig guards uploads: 5 per minute.
	UploadConfig = Config{
		Name:        PresetUpload,
		Window:      time.Minute,
		MaxRequests: 5,
		Message:     "Too many uploads, please try again later.",
	}
)

// Presets returns the built-in configs keyed by name.
func Presets() map[string]Config {
	return map[string]Config{
		PresetAuth:   AuthConfig,
		PresetCreate: CreateConfig,
		PresetRead:   ReadConfig,
		PresetUpload: UploadConfig,
	}
}

// Override returns cfg with the non-zero fields of window and message replaced.
// maxRequests is applied when window is set, so a zero limit can be configured.
func Override(cfg Config, window time.Duration, maxRequests int, message string) Config {
	if window > 0 {
		cfg.Window = window
		cfg.MaxRequests = maxRequests
	}
	if message != "" {
		cfg.Message = message
	}
	return cfg
}
