package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3nft/internal/chain"
	"github.com/Mohsinsiddi/w3nft/internal/ui"
	"github.com/Mohsinsiddi/w3nft/internal/wallet"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// termPrompter is the local wallet's approval UI on the terminal. --yes
// approves everything and picks the default wallet.
type termPrompter struct {
	mgr *wallet.Manager
}

var _ wallet.Prompter = termPrompter{}

func (p termPrompter) ChooseAccount(candidates []*wallet.Wallet) (*wallet.Wallet, error) {
	if w := preferredWallet(p.mgr, candidates); w != nil {
		if assumeYes || ui.Confirm(fmt.Sprintf("Connect wallet %q (%s)?", w.Name, ui.TruncateAddr(w.Address))) {
			return w, nil
		}
		return nil, wallet.ErrPromptDismissed
	}
	if assumeYes {
		return candidates[0], nil
	}

	items := make([]ui.PickerItem, len(candidates))
	for i, w := range candidates {
		items[i] = ui.PickerItem{Label: w.Name, SubLabel: ui.TruncateAddr(w.Address), Value: w.Name}
	}
	picked, err := ui.PickItem("Connect Wallet  ·  choose an account", items)
	if err != nil {
		return nil, err
	}
	if picked == "" {
		return nil, wallet.ErrPromptDismissed
	}
	for _, w := range candidates {
		if w.Name == picked {
			return w, nil
		}
	}
	return nil, wallet.ErrPromptDismissed
}

func (termPrompter) ApproveSwitch(to chain.Network) bool {
	return assumeYes || ui.Confirm(fmt.Sprintf("Allow the wallet to switch to %s (chain %d)?", to.DisplayName, to.ChainID))
}

func (termPrompter) ApproveAddNetwork(n chain.Network) bool {
	if assumeYes {
		return true
	}
	fmt.Println(ui.KeyValueBlock("Add network", [][2]string{
		{"Network", n.DisplayName},
		{"Chain ID", fmt.Sprintf("%d (%s)", n.ChainID, n.HexChainID())},
		{"Currency", n.NativeCurrency.Symbol},
		{"RPC", n.RPCURL()},
		{"Explorer", n.ExplorerURL},
	}))
	return ui.Confirm("Allow this site to add the network?")
}

func (termPrompter) ApproveTransaction(req wallet.TxRequest) bool {
	if assumeYes {
		return true
	}
	fmt.Println(ui.KeyValueBlock("Signature request", txPairs(req)))
	return ui.Confirm("Sign and send this transaction?")
}

// preferredWallet is --wallet, else the default wallet, when it is among
// candidates. A single candidate is always preferred.
func preferredWallet(mgr *wallet.Manager, candidates []*wallet.Wallet) *wallet.Wallet {
	if len(candidates) == 1 {
		return candidates[0]
	}
	name := walletFlag
	if name == "" {
		if d := mgr.Default(); d != nil {
			name = d.Name
		}
	}
	for _, w := range candidates {
		if name != "" && w.Name == name {
			return w
		}
	}
	return nil
}

func txPairs(req wallet.TxRequest) [][2]string {
	to := "contract creation"
	if req.To != nil {
		to = req.To.Hex()
	}
	value := "0"
	if req.Value != nil {
		value = formatUnits(req.Value, req.Network.NativeCurrency.Decimals)
	}
	pairs := [][2]string{
		{"Network", req.Network.DisplayName},
		{"From", req.From.Hex()},
		{"To", to},
		{"Value", value + " " + req.Network.NativeCurrency.Symbol},
		{"Gas limit", fmt.Sprintf("%d", req.Gas)},
	}
	if len(req.Data) >= 4 {
		pairs = append(pairs, [2]string{"Call", hexutil.Encode(req.Data[:4]) + fmt.Sprintf(" (%d bytes)", len(req.Data))})
	}
	return pairs
}

// formatUnits renders v with decimals places, trimming trailing zeros.
func formatUnits(v interface{ String() string }, decimals int) string {
	s := v.String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if decimals <= 0 {
		return s
	}
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	whole, frac := s[:len(s)-decimals], strings.TrimRight(s[len(s)-decimals:], "0")
	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
