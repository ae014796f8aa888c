// Package config provides loading and environment overlay for docstream
// runtime configuration. It exposes a Default() baseline and helpers to
// construct the container host's storage and reconnect settings.
//
// Example:
//
//	cfg := config.Default()
//	// Optionally load from file and overlay env vars
//	if fileCfg, err := config.Load("/etc/docstream.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	// Pass cfg into runtime.Options
//	host, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer host.Close()
package config
