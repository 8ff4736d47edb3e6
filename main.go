package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-oxen/go-lsrpc/lib/config"
	"github.com/go-oxen/go-lsrpc/lib/directory"
	"github.com/go-oxen/go-lsrpc/lib/onion"
	"github.com/go-oxen/go-lsrpc/lib/snode"
	"github.com/go-oxen/go-lsrpc/lib/transport"
	"github.com/go-oxen/go-lsrpc/lib/util/logger"
	"github.com/go-oxen/go-lsrpc/lib/util/signals"
)

var log = logger.GetLSRPCLogger()

var (
	flagHost     string
	flagPort     uint16
	flagProtocol string
	flagTarget   string
	flagMethod   string
	flagParams   string
)

var rootCmd = &cobra.Command{
	Use:   "go-lsrpc",
	Short: "Send an onion-routed LSRPC request through the service-node network",
	Long: `go-lsrpc builds a multi-layered onion request for a JSON-RPC payload,
sends it to a randomly selected entry service node, and prints the
response relayed back by the chain.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(config.InitConfig)

	rootCmd.PersistentFlags().StringVar(&config.CfgFile, "config", "", "config file (default $HOME/.go-lsrpc/config.yaml)")
	rootCmd.Flags().StringVar(&flagHost, "host", "", "destination host (FQDN or IP)")
	rootCmd.Flags().Uint16Var(&flagPort, "port", 443, "destination port")
	rootCmd.Flags().StringVar(&flagProtocol, "protocol", "https", "destination protocol (http|https)")
	rootCmd.Flags().StringVar(&flagTarget, "target", "/oxen/v3/lsrpc", "destination target path")
	rootCmd.Flags().StringVar(&flagMethod, "method", "", "payload method; with --params forms {method, params}")
	rootCmd.Flags().StringVar(&flagParams, "params", "{}", "payload params as JSON")
	rootCmd.Flags().Int("path-length", config.DefaultPathLength, "hops per request")
	viper.BindPFlag("path_length", rootCmd.Flags().Lookup("path-length"))
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.NewClientConfigFromViper()
	logger.SetLevelString(cfg.LogLevel)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go signals.Handle()
	signals.RegisterInterruptHandler(func() {
		log.Warn("interrupt received, aborting request")
		cancel()
	})
	signals.RegisterReloadHandler(func() {
		config.InitConfig()
	})

	payload, err := buildPayload(cmd.InOrStdin())
	if err != nil {
		return err
	}

	dst := snode.Destination{
		Host:     flagHost,
		Port:     flagPort,
		Protocol: flagProtocol,
		Target:   flagTarget,
	}
	if err := dst.Validate(); err != nil {
		return err
	}

	dir := directory.NewClient(cfg.Directory)
	client, err := onion.NewClient(cfg, nil, dir, transport.NewTransport(cfg))
	if err != nil {
		return err
	}

	log.Debug("refreshing service-node directory")
	if err := client.Refresh(ctx); err != nil {
		return err
	}

	resp, err := client.SendRequest(ctx, payload, dst)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "status: %d\n", resp.StatusCode)
	cmd.OutOrStdout().Write(resp.Body)
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

// buildPayload assembles the request payload: {method, params} when
// --method is given, otherwise a JSON document read from stdin.
func buildPayload(stdin io.Reader) (interface{}, error) {
	if flagMethod != "" {
		var params json.RawMessage
		if err := json.Unmarshal([]byte(flagParams), &params); err != nil {
			return nil, fmt.Errorf("--params is not valid JSON: %w", err)
		}
		return map[string]json.RawMessage{
			"method": json.RawMessage(fmt.Sprintf("%q", flagMethod)),
			"params": params,
		}, nil
	}

	raw, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("reading payload from stdin: %w", err)
	}
	var payload json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("stdin payload is not valid JSON: %w", err)
	}
	return payload, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("request failed")
		fmt.Fprintf(os.Stderr, "go-lsrpc: %s\n", err)
		os.Exit(1)
	}
}
