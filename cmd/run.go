package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/encodeous/dvroute/core"
	"github.com/encodeous/dvroute/state"
	"github.com/spf13/cobra"
)

var runOpts = core.Options{
	Duration: 2 * time.Second,
	Quiet:    200 * time.Millisecond,
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long: `Runs every node of the topology until the routing tables converge, sends the requested host messages,
keeps the network running for --duration and prints every routing table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, err := state.LoadTopology(topologyPath)
		if err != nil {
			return err
		}
		sends, err := cmd.Flags().GetStringArray("send")
		if err != nil {
			return err
		}
		runOpts.Messages = make([]core.Message, 0, len(sends))
		for _, s := range sends {
			m, err := ParseMessage(s)
			if err != nil {
				return err
			}
			if !topo.HasHost(m.Src) {
				return fmt.Errorf("message source %s is not a host", m.Src)
			}
			runOpts.Messages = append(runOpts.Messages, m)
		}

		runOpts.LogLevel = slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			runOpts.LogLevel = slog.LevelDebug
		}
		runOpts.Out = cmd.OutOrStdout()
		return core.Start(topo, runOpts)
	},
	GroupID: "sim",
}

// ParseMessage parses a message given as src:dst:data.
func ParseMessage(s string) (core.Message, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return core.Message{}, fmt.Errorf("message %q must be src:dst:data", s)
	}
	src, dst := state.NodeId(parts[0]), state.NodeId(parts[1])
	if err := state.HostValidator(src); err != nil {
		return core.Message{}, err
	}
	if err := state.HostValidator(dst); err != nil {
		return core.Message{}, err
	}
	return core.Message{Src: src, Dst: dst, Data: parts[2]}, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().StringArrayP("send", "s", nil, "Send a message once converged, as src:dst:data (repeatable)")
	runCmd.Flags().DurationVarP(&runOpts.Duration, "duration", "d", runOpts.Duration, "How long to run after the messages are sent")
	runCmd.Flags().DurationVar(&runOpts.Quiet, "quiet", runOpts.Quiet, "How long routing tables must be stable to count as converged")
	runCmd.Flags().StringVar(&runOpts.LogPath, "log-path", "", "Also write logs to this file")
	runCmd.Flags().StringVar(&runOpts.DebugAddr, "debug-addr", "", "Serve /debug/metrics and /debug/vars on this address")
}
