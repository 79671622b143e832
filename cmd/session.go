package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/Mohsinsiddi/w3nft/internal/config"
	"github.com/Mohsinsiddi/w3nft/internal/gateway"
	"github.com/Mohsinsiddi/w3nft/internal/rpc"
	"github.com/Mohsinsiddi/w3nft/internal/token"
	"github.com/Mohsinsiddi/w3nft/internal/ui"
	"github.com/Mohsinsiddi/w3nft/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

const accountChangeTimeout = 2 * time.Second

// walletProvider is a wallet.Provider whose state survives between runs.
type walletProvider interface {
	wallet.Provider
	Disconnect()
	State() (account string, chainID int64, known []chain.Network)
}

// session is everything one command needs to talk to the collection.
type session struct {
	network  *chain.Network
	client   *chain.Client
	provider walletProvider
	gw       *gateway.Gateway
	closers  []func()
}

// openSession resolves the network and collection, dials the best RPC and
// builds the wallet provider and gateway.
func openSession(ctx context.Context) (*session, error) {
	n, err := resolveNetwork()
	if err != nil {
		return nil, err
	}
	addr, err := resolveContract()
	if err != nil {
		return nil, err
	}
	client, err := dialNetwork(ctx, n)
	if err != nil {
		return nil, err
	}
	s := &session{network: n, client: client, closers: []func(){client.Close}}

	p, closeFn, err := newProvider(n)
	if err != nil {
		s.close()
		return nil, err
	}
	if closeFn != nil {
		s.closers = append(s.closers, closeFn)
	}
	s.provider = p
	s.gw = gateway.New(p, client, *n, addr,
		gateway.WithFallbackGas(config.GasLimitMint, config.GasLimitTransfer))
	return s, nil
}

// connect runs the connect flow and persists the resulting wallet state,
// whether or not it succeeded.
func (s *session) connect(ctx context.Context) (common.Address, error) {
	acct, err := s.gw.Connect(ctx)
	if serr := saveProviderState(s.provider); serr != nil {
		log.Warn("Could not save wallet session", "err", serr)
	}
	return acct, explain(err)
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// resolveNetwork returns --network or the configured default.
func resolveNetwork() (*chain.Network, error) {
	name := networkFlag
	if name == "" {
		name = cfg.DefaultNetwork
	}
	n, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q, run `w3nft network list` to see all networks", name)
	}
	return n, nil
}

// resolveContract returns --contract or the configured collection address.
func resolveContract() (common.Address, error) {
	raw := contractFlag
	if raw == "" {
		raw = cfg.ContractAddress
	}
	if raw == "" {
		return common.Address{}, fmt.Errorf("no collection configured\n  Deploy one with: w3nft deploy --artifact <path>\n  Or set it with:  w3nft init")
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid collection address %q", raw)
	}
	return common.HexToAddress(raw), nil
}

// dialNetwork connects to the best RPC for n, custom RPCs first.
func dialNetwork(ctx context.Context, n *chain.Network) (*chain.Client, error) {
	urls := append(append([]string{}, cfg.GetRPCs(n.Name)...), n.RPCURLs...)

	sctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	url, err := rpc.SelectBest(sctx, urls, cfg.RPCAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("no reachable RPC for %s: %w\n  Add one with: w3nft rpc add %s <url>", n.DisplayName, err, n.Name)
	}
	log.Debug("Selected RPC", "network", n.Name, "url", url)
	return chain.Dial(ctx, url)
}

// newProvider builds the wallet from persisted state: Clef when --signer is
// given, the local keychain wallet otherwise. The wallet starts on the chain
// it was left on, or on target for a fresh session.
func newProvider(target *chain.Network) (walletProvider, func(), error) {
	reg := chain.NewRegistry()
	current := *target
	account := ""
	if cfg.Session != nil {
		account = cfg.Session.Account
		if n, err := reg.GetByChainID(cfg.Session.ChainID); err == nil {
			current = *n
		}
	}
	var known []chain.Network
	for _, name := range cfg.WalletNetworks {
		if n, err := reg.GetByName(name); err == nil {
			known = append(known, *n)
		}
	}

	if signerFlag != "" {
		p, err := wallet.DialExternal(signerFlag, current, known)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { p.Close() }, nil
	}

	mgr := newWalletManager()
	return wallet.NewLocalProvider(mgr, termPrompter{mgr: mgr}, wallet.LocalOptions{
		Current: current,
		Known:   known,
		Account: account,
	}), nil, nil
}

// saveProviderState records the authorized account, the wallet's chain and
// every network it has been told about.
func saveProviderState(p walletProvider) error {
	account, chainID, known := p.State()
	cfg.Session = &config.Session{Account: account, ChainID: chainID}
	for _, n := range known {
		cfg.RememberWalletNetwork(n.Name)
	}
	return cfg.Save()
}

// followAccountChange runs change against p while a gateway follows the
// wallet's accounts-changed stream, and reports the account the gateway ends
// up with. Providers only notify when the authorized account actually moves.
func followAccountChange(ctx context.Context, p walletProvider, n *chain.Network, change func() error) (common.Address, bool, error) {
	gw := gateway.New(p, nil, *n, common.Address{})
	seen := make(chan struct{}, 1)
	sub := gw.WatchAccounts(ctx, func(common.Address, bool) {
		select {
		case seen <- struct{}{}:
		default:
		}
	})
	defer sub.Unsubscribe()

	before, _, _ := p.State()
	if err := change(); err != nil {
		return common.Address{}, false, err
	}
	after, _, _ := p.State()
	if after == before {
		return common.HexToAddress(after), after != "", nil
	}

	wctx, cancel := context.WithTimeout(ctx, accountChangeTimeout)
	defer cancel()
	select {
	case <-seen:
	case <-wctx.Done():
		return common.Address{}, false, fmt.Errorf("wallet did not report the account change: %w", wctx.Err())
	}
	acct, ok := gw.Account()
	return acct, ok, nil
}

// explain adds a next step to gateway errors the user can act on.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gateway.ErrUserRejected):
		return fmt.Errorf("%w\n  Nothing was changed. Re-run and approve the prompt to continue.", err)
	case errors.Is(err, gateway.ErrWalletUnavailable):
		return fmt.Errorf("%w\n  Add a signing wallet with: w3nft wallet add <name> --key <private-key>", err)
	case errors.Is(err, gateway.ErrNetworkMismatch):
		return fmt.Errorf("%w\n  Switch the wallet to the collection's network and retry.", err)
	}
	return err
}

// progressSpinner shows the confirmation wait of a mint or transfer. Nothing
// spins while the wallet may still be prompting.
func progressSpinner(n *chain.Network) (token.ProgressFunc, func()) {
	var sp *ui.Spinner
	stop := func() {
		if sp != nil {
			sp.Stop()
			sp = nil
		}
	}
	return func(phase token.Phase, tx common.Hash) {
		switch phase {
		case token.PhaseSubmitting:
			fmt.Println(ui.Meta("Waiting for wallet signature..."))
		case token.PhaseAwaitingConfirmation:
			fmt.Println(ui.Info("Transaction sent: " + ui.Addr(tx.Hex())))
			if link := n.TxURL(tx.Hex()); link != "" {
				fmt.Println(ui.Meta("  " + link))
			}
			sp = ui.NewSpinner("Waiting for confirmation...")
			sp.Start()
		default:
			if phase.Terminal() && sp != nil {
				sp.StopWithMsg(ui.Meta("Transaction " + phase.String() + "."))
				sp = nil
			}
		}
	}, stop
}

// printResult renders a mint or transfer outcome. Failures come back as an
// error so the process exits non-zero.
func printResult(n *chain.Network, res token.OperationResult) error {
	if !res.Success {
		log.Debug("Operation failed", "phase", res.Phase, "err", res.Err)
		return errors.New(res.Status)
	}
	fmt.Println(ui.Success(res.Status))
	pairs := [][2]string{{"Tx", res.TxHash.Hex()}}
	if res.TokenID != nil {
		pairs = append(pairs, [2]string{"Token ID", res.TokenID.String()})
	}
	if link := n.TxURL(res.TxHash.Hex()); link != "" {
		pairs = append(pairs, [2]string{"Explorer", link})
	}
	fmt.Println(ui.KeyValueBlock("", pairs))
	return nil
}

// parseTokenID accepts decimal or 0x-prefixed hex ids. Leading zeros stay
// decimal.
func parseTokenID(s string) (*big.Int, error) {
	digits, base := s, 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits, base = s[2:], 16
	}
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return nil, fmt.Errorf("invalid token id %q", s)
	}
	id, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid token id %q", s)
	}
	return id, nil
}
