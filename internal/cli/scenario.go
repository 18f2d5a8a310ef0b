package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dacapoday/share/internal/scenario"
)

func newTreeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Build a parent/children tree, drop the root, check finalization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.Tree
			if err := overrides(cmd, map[string]*int{
				"depth":  &cfg.Depth,
				"fanout": &cfg.Fanout,
			}); err != nil {
				return err
			}
			a.cfg.Tree = cfg
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			res, err := scenario.Tree(cmd.Context(), cfg, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "nodes=%d finalized=%d dangling=%d\n", res.Nodes, res.Finalized, res.Dangling)
			return nil
		},
	}
	cmd.Flags().Int("depth", 0, "Length of the root to leaf chain")
	cmd.Flags().Int("fanout", 0, "Extra leaves per chain node")
	return cmd
}

func newCounterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Increment a mutex-guarded counter from many goroutines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.Counter
			if err := overrides(cmd, map[string]*int{
				"threads":    &cfg.Threads,
				"iterations": &cfg.Iterations,
			}); err != nil {
				return err
			}
			a.cfg.Counter = cfg
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			res, err := scenario.Counter(cmd.Context(), cfg, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "want=%d got=%d\n", res.Want, res.Got)
			return nil
		},
	}
	cmd.Flags().Int("threads", 0, "Number of goroutines")
	cmd.Flags().Int("iterations", 0, "Increments per goroutine")
	return cmd
}

func newPipelineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Send from many cloned senders to one receiver, check ordering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.Pipeline
			if err := overrides(cmd, map[string]*int{
				"producers": &cfg.Producers,
				"messages":  &cfg.Messages,
			}); err != nil {
				return err
			}
			a.cfg.Pipeline = cfg
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			res, err := scenario.Pipeline(cmd.Context(), cfg, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "received=%d producers=%d\n", res.Received, len(res.PerSender))
			return nil
		},
	}
	cmd.Flags().Int("producers", 0, "Number of cloned senders")
	cmd.Flags().Int("messages", 0, "Messages per sender")
	return cmd
}
