// Package metadata resolves token URIs and fetches the JSON documents
// they point to.
package metadata

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
)

// ErrBadURI is returned for token URIs that cannot be resolved.
var ErrBadURI = errors.New("unresolvable token URI")

const maxDocumentSize = 1 << 20

// Attribute is one trait of a token.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// ValueString renders the attribute value for display.
func (a Attribute) ValueString() string {
	switch v := a.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Metadata is the ERC-721 metadata document. Every field is optional.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	ExternalURL string      `json:"external_url,omitempty"`
	Attributes  []Attribute `json:"attributes"`
}

// ImageURL returns the image as an HTTP URL, translating ipfs:// through
// gateway. Empty when the document has no image.
func (m *Metadata) ImageURL(gateway string) string {
	if m.Image == "" {
		return ""
	}
	u, err := GatewayURL(m.Image, gateway)
	if err != nil {
		return m.Image
	}
	return u
}

// GatewayURL translates a content-addressed ipfs:// URI into an HTTP URL on
// gateway, e.g. ipfs://<cid>/1.json → https://ipfs.io/ipfs/<cid>/1.json.
// Other URIs are returned unchanged.
func GatewayURL(uri, gateway string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "ipfs://")
	if !ok {
		return uri, nil
	}
	rest = strings.TrimPrefix(rest, "ipfs/")
	root, path, _ := strings.Cut(rest, "/")
	if _, err := cid.Decode(root); err != nil {
		return "", fmt.Errorf("%w: %q has an invalid CID: %v", ErrBadURI, uri, err)
	}

	out := strings.TrimRight(gateway, "/") + "/ipfs/" + root
	if path != "" {
		out += "/" + path
	}
	return out, nil
}

// Fetcher downloads metadata documents.
type Fetcher struct {
	client  *http.Client
	gateway string
}

// NewFetcher creates a Fetcher resolving ipfs:// through gateway.
func NewFetcher(gateway string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		gateway: gateway,
	}
}

// Gateway returns the IPFS gateway in use.
func (f *Fetcher) Gateway() string { return f.gateway }

// Fetch resolves uri and decodes the document behind it. data: URIs
// carrying JSON (plain or base64) are decoded in place.
func (f *Fetcher) Fetch(ctx context.Context, uri string) (*Metadata, error) {
	if strings.HasPrefix(uri, "data:") {
		body, err := decodeDataURI(uri)
		if err != nil {
			return nil, err
		}
		return parse(body)
	}

	target, err := GatewayURL(uri, f.gateway)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrBadURI, uri)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching metadata: %s returned HTTP %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	return parse(body)
}

func parse(body []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	return &m, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URI", ErrBadURI)
	}
	if !strings.HasPrefix(header, "application/json") {
		return nil, fmt.Errorf("%w: data URI is %q, not JSON", ErrBadURI, header)
	}
	if strings.HasSuffix(header, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadURI, err)
		}
		return b, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadURI, err)
	}
	return []byte(s), nil
}
