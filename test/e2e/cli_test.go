package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "w3nft-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "w3nft")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "W3NFT_CONFIG_DIR="+configDir)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestVersionFlag(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "w3nft")
	assert.Contains(t, out, "0.1.0")
}

func TestHelpCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--help")
	require.NoError(t, err)
	lower := strings.ToLower(out)
	for _, c := range []string{"connect", "mint", "transfer", "collection", "deploy", "wallet", "network"} {
		assert.Contains(t, lower, c)
	}
	assert.Contains(t, out, "--signer")
	assert.Contains(t, out, "--network")
}

func TestNetworkList(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "network", "list")
	require.NoError(t, err)
	for _, n := range []string{"etherlink-testnet", "sepolia", "localhost", "128123"} {
		assert.Contains(t, out, n)
	}
}

func TestNetworkShowDefault(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "network", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "0x1f47b")
	assert.Contains(t, out, "https://node.ghostnet.etherlink.com")
}

func TestNetworkUse(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "network", "use", "sepolia")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "sepolia")

	cfgOut, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, cfgOut, `"default_network": "sepolia"`)
}

func TestNetworkUseUnknown(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "network", "use", "unknownchain99")
	assert.Error(t, err)
}

func TestWalletAddAndList(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "wallet", "add", "watcher", "0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "watcher")
	assert.Contains(t, out, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	assert.Contains(t, out, "watch-only")
}

func TestWalletAddRejectsBadAddress(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "wallet", "add", "bad", "0x1234")
	assert.Error(t, err)
}

func TestWalletRemove(t *testing.T) {
	dir := t.TempDir()

	runCLI(t, dir, "wallet", "add", "w1", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8") //nolint:errcheck

	// Use stdin to auto-confirm the prompt.
	cmd := exec.Command(binaryPath, "wallet", "remove", "w1")
	cmd.Env = append(os.Environ(), "W3NFT_CONFIG_DIR="+dir)
	cmd.Stdin = strings.NewReader("y\n")
	cmd.Run() //nolint:errcheck

	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "w1")
}

func TestRPCAdd(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "rpc", "add", "sepolia", "https://custom.rpc.url")
	require.NoError(t, err)

	out, _ := runCLI(t, dir, "rpc", "list", "sepolia")
	assert.Contains(t, out, "custom.rpc.url")
}

func TestRPCAlgorithm(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "rpc", "algorithm", "failover")
	require.NoError(t, err)

	out, _ := runCLI(t, dir, "config", "list")
	assert.Contains(t, out, "failover")

	_, err = runCLI(t, dir, "rpc", "algorithm", "round-robin")
	assert.Error(t, err)
}

func TestConfigList(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "default_network")
	assert.Contains(t, out, "ipfs_gateway")
	assert.Contains(t, out, "https://ipfs.io")
}

func TestConfigSetContract(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set-contract", "0x5fbdb2315678afecb367f032d93f642f64180aa3")
	require.NoError(t, err)

	out, _ := runCLI(t, dir, "config", "list")
	assert.Contains(t, out, "0x5FbDB2315678afecb367f032d93F642f64180aa3")

	_, err = runCLI(t, dir, "config", "set-contract", "nope")
	assert.Error(t, err)
}

func TestMintWithoutCollectionFails(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "mint", "ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi/1.json")
	assert.Error(t, err)
	assert.Contains(t, out, "no collection configured")
}

func TestTransferRequiresFlags(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "transfer", "--to", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	assert.Error(t, err)
}

func TestDisconnectWithoutSession(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "disconnect")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")
}

func TestUnknownCommandShowsError(t *testing.T) {
	dir := t.TempDir()
	out, _ := runCLI(t, dir, "unknowncommand")
	assert.Contains(t, strings.ToLower(out), "unknown command")
}
