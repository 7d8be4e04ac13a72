package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/encodeous/dvroute/core"
	"github.com/encodeous/dvroute/state"
	"github.com/spf13/cobra"
)

var inspectTimeout = 10 * time.Second

var inspectCmd = &cobra.Command{
	Use:     "inspect [router...]",
	Aliases: []string{"i"},
	Short:   "Prints converged routing tables",
	Long:    `Runs the topology until routing converges and prints the tables of the given routers, or of every router.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, err := state.LoadTopology(topologyPath)
		if err != nil {
			return err
		}
		logger, err := core.NewLogger(slog.LevelWarn, "", "dvroute")
		if err != nil {
			return err
		}
		nw, err := core.Build(topo, state.NewEnv(topo, logger))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), inspectTimeout)
		defer cancel()
		nw.Start(ctx)
		err = nw.WaitConverged(ctx, runOpts.Quiet)
		nw.Stop()
		if err != nil {
			return fmt.Errorf("routing did not converge: %w", err)
		}

		ids := nw.RouterIds()
		if len(args) != 0 {
			ids = make([]state.NodeId, 0, len(args))
			for _, a := range args {
				ids = append(ids, state.NodeId(a))
			}
		}
		for _, id := range ids {
			out, err := nw.Inspect(context.Background(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s:\n%s", id, out)
		}
		return nil
	},
	GroupID: "sim",
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validates a topology",
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, err := state.LoadTopology(topologyPath)
		if err != nil {
			return err
		}
		edges, err := topo.Edges()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Topology is valid: %d hosts, %d routers, %d links\n",
			len(topo.Hosts), len(topo.Routers), len(edges))
		for _, e := range edges {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s <-> %s (loss %g)\n", e.A, e.B, e.Loss)
		}
		return nil
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(validateCmd)

	inspectCmd.Flags().DurationVar(&inspectTimeout, "timeout", inspectTimeout, "Give up if routing has not converged by then")
}
