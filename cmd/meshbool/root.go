package main

import (
	"fmt"
	"log/slog"

	"github.com/chazu/meshbool/pkg/bridge"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/kernel/bsp"
	"github.com/chazu/meshbool/pkg/kernel/manifold"
	"github.com/chazu/meshbool/pkg/meshio"
	"github.com/chazu/meshbool/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is the state shared by every subcommand once configuration has been
// loaded.
type app struct {
	configPath string
	v          *viper.Viper
	logger     *slog.Logger
	kernel     kernel.Kernel
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "meshbool",
		Short: "Boolean operations on polygon meshes",
		Long: `meshbool computes union, intersection and difference of closed polygon
meshes. Every face and edge of a result records which input it came from, so
per-face attributes such as materials survive the operation.

Configuration is read from meshbool.yaml in the working directory (or --config),
then from MESHBOOL_* environment variables, then from flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./meshbool.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("log-format", "", "log format: text or json")
	pf.String("kernel", "", "boolean kernel: bsp or manifold")
	pf.Float64("epsilon", 0, "bsp plane tolerance (0 selects the kernel default)")
	pf.String("metrics-file", "", "write prometheus metrics to this file on exit")

	root.AddCommand(newBoolCmd(a), newRunCmd(a), newInfoCmd(a))
	for _, c := range root.Commands() {
		c.RunE = a.withMetrics(c.RunE)
	}
	return root
}

// flagKeys maps persistent flags to the config keys they override.
var flagKeys = map[string]string{
	"log-level":    keyLogLevel,
	"log-format":   keyLogFormat,
	"kernel":       keyKernelBackend,
	"epsilon":      keyKernelEpsilon,
	"metrics-file": keyMetricsFile,
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	v, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	a.v = v

	a.logger, err = newLogger(cmd.ErrOrStderr(), v.GetString(keyLogLevel), v.GetString(keyLogFormat))
	if err != nil {
		return err
	}
	if a.kernel, err = newKernel(v); err != nil {
		return err
	}
	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)
	return nil
}

// newKernel returns the backend named by kernel.backend.
func newKernel(v *viper.Viper) (kernel.Kernel, error) {
	switch name := v.GetString(keyKernelBackend); name {
	case "bsp":
		var opts []bsp.Option
		if eps := v.GetFloat64(keyKernelEpsilon); eps > 0 {
			opts = append(opts, bsp.WithEpsilon(eps))
		}
		return bsp.New(opts...), nil
	case "manifold":
		return manifold.New()
	default:
		return nil, fmt.Errorf("kernel backend %q: want bsp or manifold", name)
	}
}

// driver returns a bridge driver over the configured kernel.
func (a *app) driver(opts ...bridge.Option) *bridge.Driver {
	opts = append([]bridge.Option{bridge.WithLogger(a.logger), bridge.WithMetrics(a.metrics)}, opts...)
	return bridge.NewDriver(a.kernel, opts...)
}

// outputFormat picks the encoding for path: its extension when it has a
// known one, otherwise the configured default.
func (a *app) outputFormat(path string) (meshio.Format, error) {
	if f, err := meshio.FormatOf(path); err == nil {
		return f, nil
	}
	return meshio.ParseFormat(a.v.GetString(keyOutputFormat))
}

// withMetrics wraps run so metrics are flushed after it returns, failed
// runs included. A flush error is only reported when run succeeded.
func (a *app) withMetrics(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if ferr := a.flushMetrics(); err == nil {
			err = ferr
		}
		return err
	}
}

func (a *app) flushMetrics() error {
	path := a.v.GetString(keyMetricsFile)
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
