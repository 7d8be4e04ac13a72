package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var topologyPath = "topology.yaml"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dvroute",
	Short: "Distance-vector routing simulator",
	Long: `dvroute simulates a network of hosts and routers joined by bounded queues.
Routers exchange distance vectors until their tables converge, then forward host traffic along the cheapest paths.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sim",
		Title: "Simulation Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&topologyPath, "topology", "t", topologyPath, "network topology")
}
