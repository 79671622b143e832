package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3nft/internal/ui"
	"github.com/Mohsinsiddi/w3nft/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage local wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a signing wallet (private key stored in the OS keychain) or a
watch-only address.

Examples:
  w3nft wallet add alice --key 0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80
  w3nft wallet add bob 0x70997970C51812dc3A010C7d01b50e0d17dc79C8`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		if walletKeyFlag != "" {
			w, err := mgr.AddWithKey(name, walletKeyFlag)
			if err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
			fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: w3nft wallet use %s", name)))
			return nil
		}

		if len(args) < 2 {
			return fmt.Errorf("address required for watch-only wallet\n  Usage: w3nft wallet add <name> <address>\n  Or for signing: w3nft wallet add <name> --key <private-key>")
		}
		if err := mgr.AddWatchOnly(name, args[1]); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(args[1]))))
		fmt.Println(ui.Hint("Watch-only wallets can be listed with `w3nft collection <address>` but cannot mint or transfer."))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		wallets := mgr.List()

		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: w3nft wallet add alice --key <private-key>"))
			return nil
		}

		connected := ""
		if cfg.Session != nil {
			connected = cfg.Session.Account
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
			{Title: "Connected", Width: 10},
		})
		for _, w := range wallets {
			def, conn := "", ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			if connected != "" && w.CommonAddress() == common.HexToAddress(connected) {
				conn = ui.StyleSuccess.Render("●")
			}
			t.AddRow(ui.Row{
				ui.Val(w.Name),
				ui.Addr(w.Address),
				ui.Meta(walletTypeLabel(w.Type)),
				def,
				conn,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !assumeYes && !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr := newWalletManager()
		w, err := mgr.Get(name)
		if err != nil {
			return err
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if cfg.Session != nil && common.HexToAddress(cfg.Session.Account) == w.CommonAddress() {
			cfg.Session.Account = ""
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Println(ui.Meta("The removed wallet was connected; it has been disconnected."))
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet (and the connected account, if connected)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))

		if cfg.Session == nil || cfg.Session.Account == "" || signerFlag != "" {
			fmt.Println(ui.Hint("Connect it with: w3nft connect"))
			return nil
		}
		// Already connected: move the authorization to the new account.
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		p, _, err := newProvider(n)
		if err != nil {
			return err
		}
		local, ok := p.(*wallet.LocalProvider)
		if !ok {
			return nil
		}
		account, _, err := followAccountChange(cmd.Context(), p, n, func() error {
			return local.SelectAccount(name)
		})
		if err != nil {
			fmt.Println(ui.Warn(fmt.Sprintf("Connected account unchanged: %v", err)))
			return nil
		}
		if err := saveProviderState(p); err != nil {
			return err
		}
		fmt.Println(ui.Success("Connected account is now " + ui.Addr(account.Hex())))
		return nil
	},
}

var walletUnlockAll bool

var walletUnlockCmd = &cobra.Command{
	Use:   "unlock [name]",
	Short: "Cache wallet key(s) for the session (skips future keychain prompts)",
	Long: `Retrieve private keys from the OS keychain once and cache them in a
restricted session file so later commands sign without a keychain prompt.

  # Interactive, pick a wallet from a list
  w3nft wallet unlock

  # Unlock a specific wallet by name
  w3nft wallet unlock alice

  # Unlock every signing wallet at once
  w3nft wallet unlock --all

The OS may prompt once per wallet during unlock. Transactions are still
shown for approval unless --yes is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()

		signing := mgr.Signing()
		if len(signing) == 0 {
			fmt.Println(ui.Info("No signing wallets found."))
			fmt.Println(ui.Hint("Add one with: w3nft wallet add <name> --key <private-key>"))
			return nil
		}

		var targets []*wallet.Wallet
		switch {
		case walletUnlockAll:
			targets = signing

		case len(args) > 0:
			w, err := mgr.Get(args[0])
			if err != nil {
				return err
			}
			targets = []*wallet.Wallet{w}

		default:
			items := make([]ui.PickerItem, len(signing))
			for i, w := range signing {
				sub := ui.TruncateAddr(w.Address)
				if _, ok := wallet.GetSessionKey(w.KeyRef); ok {
					sub += "  " + ui.Meta("[cached]")
				}
				items[i] = ui.PickerItem{Label: w.Name, SubLabel: sub, Value: w.Name}
			}
			picked, err := ui.PickItem("Unlock Wallet  ·  select to cache key", items)
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			w, err := mgr.Get(picked)
			if err != nil {
				return err
			}
			targets = []*wallet.Wallet{w}
		}

		fmt.Println(ui.Info("Your OS keychain may prompt once per wallet being unlocked."))
		fmt.Println()

		var unlocked, skipped int
		for _, w := range targets {
			if _, ok := wallet.GetSessionKey(w.KeyRef); ok {
				fmt.Println(ui.Meta(fmt.Sprintf("  %-20s already cached", w.Name)))
				skipped++
				continue
			}
			if err := wallet.Unlock(w, mgr.KeyStore()); err != nil {
				fmt.Println(ui.Err(fmt.Sprintf("  %-20s %v", w.Name, err)))
				continue
			}
			fmt.Println(ui.Success(fmt.Sprintf("  %-20s unlocked", w.Name)))
			unlocked++
		}

		fmt.Println()
		if unlocked > 0 {
			fmt.Println(ui.Success(fmt.Sprintf(
				"%d wallet(s) cached. No keychain prompts until 'w3nft wallet lock'.", unlocked)))
		}
		if skipped > 0 {
			fmt.Println(ui.Meta(fmt.Sprintf("  %d already cached, skipped.", skipped)))
		}
		return nil
	},
}

var walletLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Clear the session cache (re-enables keychain prompts)",
	Long:  `Delete the session file written by 'w3nft wallet unlock'. The next signature will go through the OS keychain again.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wallet.SessionActive() {
			fmt.Println(ui.Meta("No active session, nothing to clear."))
			return nil
		}
		if err := wallet.ClearSession(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		fmt.Println(ui.Success("Session cleared. Keychain will be used on next access."))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for signing wallet (stored in OS keychain)")
	walletUnlockCmd.Flags().BoolVar(&walletUnlockAll, "all", false, "unlock all signing wallets")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd,
		walletUnlockCmd, walletLockCmd)
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "read-write"
	default:
		return t // "watch-only" is already user-friendly
	}
}

// newWalletManager creates a Manager backed by the config-dir JSON store and
// the OS keychain.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeyStore(wallet.NewKeychain(cfg.Dir())),
	)
}
