package contract

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"golang.org/x/crypto/sha3"
)

// ERC721ABI is the collection surface the dApp consumes: OpenZeppelin
// ERC721 + ERC721Enumerable's totalSupply + ERC721URIStorage + an
// owner-gated safeMint(address,string).
const ERC721ABI = `[
{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"supportsInterface","stateMutability":"view","inputs":[{"name":"interfaceId","type":"bytes4"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"safeMint","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"uri","type":"string"}],"outputs":[]},
{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":true}]}
]`

// InterfaceIDERC721 is the ERC-165 identifier of the core ERC-721 interface.
var InterfaceIDERC721 = [4]byte{0x80, 0xac, 0x58, 0xcd}

var parsedERC721 abi.ABI

func init() {
	var err error
	parsedERC721, err = abi.JSON(strings.NewReader(ERC721ABI))
	if err != nil {
		panic("contract: bad ERC721 ABI: " + err.Error())
	}
}

// ParsedERC721 returns the parsed collection ABI.
func ParsedERC721() abi.ABI { return parsedERC721 }

// Selector returns the 4-byte function selector for a canonical signature
// such as "ownerOf(uint256)", hex-encoded with 0x.
func Selector(sig string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// InterfaceID XORs the selectors of sigs, per ERC-165.
func InterfaceID(sigs ...string) [4]byte {
	var id [4]byte
	for _, s := range sigs {
		h := sha3.NewLegacyKeccak256()
		h.Write([]byte(s))
		sel := h.Sum(nil)
		for i := range id {
			id[i] ^= sel[i]
		}
	}
	return id
}
