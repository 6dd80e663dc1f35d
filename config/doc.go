// Package config provides type-safe environment variable loading with
// per-type caching. A .env file is loaded automatically on first use; parsing
// is delegated to the caarlos0/env library.
//
// Usage:
//
//	type ServerConfig struct {
//		Addr string `env:"SERVER_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	config.MustLoad(&cfg)
package config
