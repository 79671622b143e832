package cmd

import (
	"fmt"
	"math/big"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/w3nft/internal/config"
	"github.com/Mohsinsiddi/w3nft/internal/contract"
	"github.com/Mohsinsiddi/w3nft/internal/gateway"
	"github.com/Mohsinsiddi/w3nft/internal/ui"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	deployArtifact string
	deployArgs     []string
	deployNoUse    bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the ERC-721 collection contract",
	Long: `Deploy a compiled collection from a Hardhat or Foundry artifact using the
connected wallet, then make it the configured collection.

Constructor arguments are given in order with --arg. An address parameter
left out defaults to the deployer.

Examples:
  w3nft deploy --artifact artifacts/contracts/EtherlinkNFT.sol/EtherlinkNFT.json
  w3nft deploy --artifact out/NFT.sol/NFT.json --arg "My NFT" --arg MNFT`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		art, err := contract.LoadArtifact(deployArtifact)
		if err != nil {
			return err
		}
		if art.Name == "" {
			art.Name = strings.TrimSuffix(filepath.Base(deployArtifact), filepath.Ext(deployArtifact))
		}

		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		client, err := dialNetwork(ctx, n)
		if err != nil {
			return err
		}
		defer client.Close()

		p, closeFn, err := newProvider(n)
		if err != nil {
			return err
		}
		if closeFn != nil {
			defer closeFn()
		}

		gw := gateway.New(p, client, *n, common.Address{})
		deployer, err := gw.Connect(ctx)
		if serr := saveProviderState(p); serr != nil {
			fmt.Println(ui.Warn("Could not save wallet session: " + serr.Error()))
		}
		if err != nil {
			return explain(err)
		}

		ctorArgs, err := constructorArgs(art.ABI.Constructor.Inputs, deployArgs, deployer)
		if err != nil {
			return err
		}
		chainID, err := p.ChainID(ctx)
		if err != nil {
			return err
		}

		fmt.Println(ui.Info(fmt.Sprintf("Deploying %s to %s from %s", ui.Val(art.Name), n.DisplayName, ui.Addr(deployer.Hex()))))
		sp := ui.NewSpinner("Waiting for deployment...")
		sp.Start()
		dep, err := contract.Deploy(ctx, art, client, deployer, chainID, p, ctorArgs...)
		sp.Stop()
		if err != nil {
			return err
		}

		rec := config.DeploymentRecord{
			Network:  n.Name,
			Address:  dep.Address.Hex(),
			TxHash:   dep.Tx.Hash().Hex(),
			Deployer: deployer.Hex(),
			Artifact: art.Name,
		}
		if err := cfg.RecordDeployment(rec); err != nil {
			fmt.Println(ui.Warn("Could not record deployment: " + err.Error()))
		}

		pairs := [][2]string{
			{"Contract", art.Name},
			{"Address", rec.Address},
			{"Tx", rec.TxHash},
		}
		if link := n.AddressURL(rec.Address); link != "" {
			pairs = append(pairs, [2]string{"Explorer", link})
		}
		fmt.Println(ui.Success(art.Name + " deployed"))
		fmt.Println(ui.KeyValueBlock("", pairs))

		if !deployNoUse {
			cfg.ContractAddress = rec.Address
			cfg.DefaultNetwork = n.Name
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Println(ui.Hint("Set as the configured collection. Mint with: w3nft mint <metadata-uri>"))
		}
		return nil
	},
}

// constructorArgs converts raw flag values to the Go types the ABI packer
// expects. Missing trailing address parameters default to deployer.
func constructorArgs(inputs abi.Arguments, raw []string, deployer common.Address) ([]interface{}, error) {
	if len(raw) > len(inputs) {
		return nil, fmt.Errorf("constructor takes %d argument(s), got %d", len(inputs), len(raw))
	}
	out := make([]interface{}, len(inputs))
	for i, in := range inputs {
		if i >= len(raw) {
			if in.Type.T != abi.AddressTy {
				return nil, fmt.Errorf("missing constructor argument %d (%s %s)", i+1, in.Type.String(), in.Name)
			}
			out[i] = deployer
			continue
		}
		v, err := convertArg(in.Type, raw[i])
		if err != nil {
			return nil, fmt.Errorf("constructor argument %d (%s): %w", i+1, in.Name, err)
		}
		out[i] = v
	}
	return out, nil
}

func convertArg(t abi.Type, s string) (interface{}, error) {
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil
	case abi.StringTy:
		return s, nil
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.UintTy, abi.IntTy:
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		if t.T == abi.UintTy && n.Sign() < 0 {
			return nil, fmt.Errorf("negative value %q for %s", s, t.String())
		}
		if t.Size > 64 {
			return n, nil
		}
		if t.T == abi.UintTy {
			if !n.IsUint64() || n.BitLen() > t.Size {
				return nil, fmt.Errorf("%s overflows %s", s, t.String())
			}
			return reflect.ValueOf(n.Uint64()).Convert(t.GetType()).Interface(), nil
		}
		if !n.IsInt64() || n.BitLen() >= t.Size {
			return nil, fmt.Errorf("%s overflows %s", s, t.String())
		}
		return reflect.ValueOf(n.Int64()).Convert(t.GetType()).Interface(), nil
	}
	return nil, fmt.Errorf("unsupported parameter type %s", t.String())
}

func init() {
	deployCmd.Flags().StringVar(&deployArtifact, "artifact", "", "path to the compiled contract artifact (Hardhat or Foundry JSON)")
	deployCmd.Flags().StringArrayVar(&deployArgs, "arg", nil, "constructor argument, repeat in order")
	deployCmd.Flags().BoolVar(&deployNoUse, "no-use", false, "do not make the new contract the configured collection")
	_ = deployCmd.MarkFlagRequired("artifact")
}
