package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chazu/meshbool/pkg/engine"
	"github.com/spf13/viper"
)

// Config keys. Each is also read from MESHBOOL_<KEY> with dots replaced by
// underscores, e.g. MESHBOOL_LOG_LEVEL.
const (
	keyLogLevel      = "log.level"
	keyLogFormat     = "log.format"
	keyKernelBackend = "kernel.backend"
	keyKernelEpsilon = "kernel.epsilon"
	keyOutputFormat  = "output.format"
	keyMetricsFile   = "metrics.file"
	keyEvalTimeout   = "eval.timeout"
)

// loadConfig builds a viper instance from defaults, an optional config
// file and the environment. An explicit path must exist; otherwise a
// missing meshbool.yaml in the working directory is not an error.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keyKernelBackend, "bsp")
	v.SetDefault(keyKernelEpsilon, 0.0)
	v.SetDefault(keyOutputFormat, "obj")
	v.SetDefault(keyMetricsFile, "")
	v.SetDefault(keyEvalTimeout, engine.DefaultTimeout)

	v.SetEnvPrefix("meshbool")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("meshbool")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// newLogger returns a slog logger writing to w. format is "text" or "json".
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("log format %q: want text or json", format)
}
