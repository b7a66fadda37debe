package kv

import (
	"github.com/ValentinKolb/slotkv/cmd/util"
	"github.com/ValentinKolb/slotkv/lib/store"
	"github.com/ValentinKolb/slotkv/rpc/client"
	"github.com/ValentinKolb/slotkv/rpc/common"
	"github.com/ValentinKolb/slotkv/rpc/serializer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcStore     store.IStore
	clientConfig *common.ClientConfig

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:   "kv",
		Short: "Perform key-value store operations",
		Long: `Perform key-value store operations against a running slotkv server.

The server address is read from --host and --port or from the KV_HOST and KV_PORT environment variables (default 127.0.0.1:8080).`,
		PersistentPreRunE:  setupKVClient,
		PersistentPostRunE: closeKVClient,
		SilenceUsage:       true,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common RPC flags to the KV command
	util.SetupRPCClientFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(putCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(testCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVClient initializes the RPC store client
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return err
	}

	// Get client configuration components
	config, err := util.GetClientConfig()
	if err != nil {
		return err
	}
	clientConfig = config

	// Create the KV store client
	rpcStore, err = newClient()
	return err
}

// newClient creates a new client connected to the configured server
func newClient() (store.IStore, error) {
	t, err := util.GetTransport()
	if err != nil {
		return nil, err
	}

	return client.NewRPCStore(
		*clientConfig,
		t,
		serializer.NewBinarySerializer(),
	)
}

// closeKVClient closes the connection of the RPC store client
func closeKVClient(_ *cobra.Command, _ []string) error {
	if rpcStore == nil {
		return nil
	}
	return rpcStore.Close()
}
