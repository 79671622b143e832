package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Mohsinsiddi/w3nft/internal/config"
	"github.com/Mohsinsiddi/w3nft/internal/ui"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3nft/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir       string
	cfg          *config.Config
	verbose      bool
	networkFlag  string
	walletFlag   string
	contractFlag string
	signerFlag   string
	assumeYes    bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3nft",
	Short: "Mint, list and transfer NFTs from the terminal",
	Long: `w3nft is a terminal dApp for an ERC-721 collection.

  Connect a wallet, mint a token from a metadata URI, browse the tokens an
  address owns and transfer them. Ownership rules live in the contract.

The wallet is either a local signing wallet (keys in the OS keychain) or an
external Clef signer selected with --signer.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verbose)

		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command. Ctrl-C cancels whatever is in flight.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		stop()
		os.Exit(1)
	}
}

// setupLogging routes go-ethereum's logger to stderr. Warnings only by
// default, debug with --verbose.
func setupLogging(debug bool) {
	level := log.LevelWarn
	if debug {
		level = log.LevelDebug
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, true)))
}

func init() {
	// W3NFT_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("W3NFT_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3nft)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVarP(&networkFlag, "network", "n", "", "network to use (default: configured network)")
	pf.StringVarP(&walletFlag, "wallet", "w", "", "local wallet to connect (default: configured wallet)")
	pf.StringVar(&contractFlag, "contract", "", "collection address (default: configured contract)")
	pf.StringVar(&signerFlag, "signer", "", "use an external Clef signer at this IPC path or URL")
	pf.BoolVarP(&assumeYes, "yes", "y", false, "approve wallet prompts without asking")

	// Register all sub-commands.
	rootCmd.AddCommand(
		initCmd,
		connectCmd,
		disconnectCmd,
		statusCmd,
		mintCmd,
		transferCmd,
		collectionCmd,
		showCmd,
		deployCmd,
		walletCmd,
		networkCmd,
		rpcCmd,
		configCmd,
	)
}
