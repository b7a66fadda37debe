package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/slotkv/cmd/kv"
	"github.com/ValentinKolb/slotkv/cmd/serve"
	"github.com/ValentinKolb/slotkv/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "slotkv",
		Short: "network key-value store",
		Long: fmt.Sprintf(`slotkv (v%s)

A small network key-value store with a fixed-size slot table,
per-slot locking, a fixed-size binary protocol and a flat-file snapshot.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of slotkv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("slotkv v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
