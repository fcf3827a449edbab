// Package cli implements the encutil command tree.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/greatbody/encoding-util/internal/config"
	"github.com/greatbody/encoding-util/transcoder"
)

type options struct {
	configPath string
	backend    string
}

// NewRootCmd creates the encutil command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "encutil",
		Short: "Detect and strictly convert between GBK and UTF-8",
		Long: `encutil classifies byte streams as ASCII, UTF-8, GBK or unknown and
converts between UTF-8 and GBK. Conversions never substitute characters:
input the target encoding cannot represent is an error.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a JSON or YAML config file")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "transcoding backend: auto, xtext or win32 (overrides config)")

	cmd.AddCommand(
		newDetectCmd(opts),
		newConvertCmd(opts),
		newMountCmd(opts),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

// loadConfig returns the config file if one was given, else defaults.
func (o *options) loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.backend != "" {
		cfg.Backend = o.backend
	}
	return cfg, nil
}

func (o *options) converter() (*transcoder.Converter, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	svc, err := cfg.Service()
	if err != nil {
		return nil, err
	}
	return transcoder.NewConverter(svc), nil
}

// readInput reads the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

func parseCharset(name string) (transcoder.Charset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return transcoder.CharsetUTF8, nil
	case "gbk", "cp936":
		return transcoder.CharsetGBK, nil
	default:
		return transcoder.CharsetNone, fmt.Errorf("unsupported charset %q (want utf-8 or gbk)", name)
	}
}
