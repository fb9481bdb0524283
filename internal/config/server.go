// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Zero disables it, which long range responses need.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration

	// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header's keys and values
	MaxHeaderBytes int

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	ShutdownTimeout time.Duration
}

const (
	defaultReadTimeout     = 60 * time.Second
	defaultWriteTimeout    = 0
	defaultIdleTimeout     = 120 * time.Second
	defaultMaxHeaderBytes  = 1 << 20 // 1 MB
	defaultShutdownTimeout = 15 * time.Second
	minShutdownTimeout     = 3 * time.Second
)

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadTimeout:     defaultReadTimeout,
		WriteTimeout:    defaultWriteTimeout,
		IdleTimeout:     defaultIdleTimeout,
		MaxHeaderBytes:  defaultMaxHeaderBytes,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

func (l *Loader) mergeServerFile(dst *ServerConfig, src ServerFileConfig) {
	if src.ReadTimeout > 0 {
		dst.ReadTimeout = src.ReadTimeout
	}
	if src.WriteTimeout != nil && *src.WriteTimeout >= 0 {
		dst.WriteTimeout = *src.WriteTimeout
	}
	if src.IdleTimeout > 0 {
		dst.IdleTimeout = src.IdleTimeout
	}
	if src.MaxHeaderBytes > 0 {
		dst.MaxHeaderBytes = src.MaxHeaderBytes
	}
	if src.ShutdownTimeout > 0 {
		dst.ShutdownTimeout = src.ShutdownTimeout
	}
}

func (l *Loader) mergeServerEnv(dst *ServerConfig) {
	dst.ReadTimeout = l.envDuration("VIDSERVE_SERVER_READ_TIMEOUT", dst.ReadTimeout)
	dst.WriteTimeout = l.envDuration("VIDSERVE_SERVER_WRITE_TIMEOUT", dst.WriteTimeout)
	dst.IdleTimeout = l.envDuration("VIDSERVE_SERVER_IDLE_TIMEOUT", dst.IdleTimeout)
	if v := l.envInt("VIDSERVE_SERVER_MAX_HEADER_BYTES", dst.MaxHeaderBytes); v > 0 {
		dst.MaxHeaderBytes = v
	}
	dst.ShutdownTimeout = l.envDuration("VIDSERVE_SERVER_SHUTDOWN_TIMEOUT", dst.ShutdownTimeout)
	if dst.ShutdownTimeout < minShutdownTimeout {
		dst.ShutdownTimeout = minShutdownTimeout
	}
}
