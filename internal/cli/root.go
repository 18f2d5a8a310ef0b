// Package cli implements the share command line tool.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/dacapoday/share/internal/config"
	"github.com/dacapoday/share/internal/log"
)

type app struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewRootCmd returns the root command with every scenario attached.
func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	a := &app{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:           name,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to a YAML scenario config")
	cmd.PersistentFlags().String("log-level", "", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "", "Set the log format (text, logfmt, json, pretty)")

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		flags := cc.Flags()

		var merr error

		path, err := flags.GetString("config")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logLevel, err := flags.GetString("log-level")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logFormat, err := flags.GetString("log-format")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		if merr != nil {
			return fmt.Errorf("invalid argument: %w", merr)
		}

		if path != "" {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			a.cfg = cfg
		}
		if logLevel != "" {
			a.cfg.LogLevel = logLevel
		}
		if logFormat != "" {
			a.cfg.LogFormat = logFormat
		}

		h, err := log.CreateHandler(cc.ErrOrStderr(), a.cfg.LogLevel, a.cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("failed creating log handler: %w", err)
		}
		a.logger = slog.New(h)

		return nil
	}

	cmd.AddCommand(newTreeCmd(a))
	cmd.AddCommand(newCounterCmd(a))
	cmd.AddCommand(newPipelineCmd(a))

	return cmd
}

// override copies a flag value over a config field when the flag was set.
func override(cmd *cobra.Command, name string, dst *int) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func overrides(cmd *cobra.Command, fields map[string]*int) error {
	var merr error
	for name, dst := range fields {
		if err := override(cmd, name, dst); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if merr != nil {
		return fmt.Errorf("invalid argument: %w", merr)
	}
	return nil
}
