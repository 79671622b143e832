package metadata

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cidV0 = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	cidV1 = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
)

func TestGatewayURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"ipfs://" + cidV0, "https://ipfs.io/ipfs/" + cidV0},
		{"ipfs://" + cidV1 + "/1.json", "https://ipfs.io/ipfs/" + cidV1 + "/1.json"},
		{"ipfs://ipfs/" + cidV0 + "/a/b.json", "https://ipfs.io/ipfs/" + cidV0 + "/a/b.json"},
		{"https://example.com/1.json", "https://example.com/1.json"},
		{"ar://abc", "ar://abc"},
	}
	for _, tc := range cases {
		got, err := GatewayURL(tc.in, "https://ipfs.io/")
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestGatewayURLBadCID(t *testing.T) {
	_, err := GatewayURL("ipfs://not-a-cid/1.json", "https://ipfs.io")
	assert.ErrorIs(t, err, ErrBadURI)
}

func TestImageURL(t *testing.T) {
	m := &Metadata{Image: "ipfs://" + cidV0}
	assert.Equal(t, "https://gw.example/ipfs/"+cidV0, m.ImageURL("https://gw.example"))

	m.Image = "https://cdn.example/x.png"
	assert.Equal(t, "https://cdn.example/x.png", m.ImageURL("https://gw.example"))

	m.Image = ""
	assert.Empty(t, m.ImageURL("https://gw.example"))
}

func TestFetch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Tez Cat","description":"a cat","image":"ipfs://` + cidV0 + `","attributes":[{"trait_type":"Eyes","value":"green"},{"trait_type":"Level","value":3}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 5*time.Second)
	m, err := f.Fetch(context.Background(), "ipfs://"+cidV1+"/7.json")
	require.NoError(t, err)
	assert.Equal(t, "/ipfs/"+cidV1+"/7.json", gotPath)
	assert.Equal(t, "Tez Cat", m.Name)
	assert.Equal(t, "a cat", m.Description)
	require.Len(t, m.Attributes, 2)
	assert.Equal(t, "Eyes", m.Attributes[0].TraitType)
	assert.Equal(t, "green", m.Attributes[0].ValueString())
	assert.Equal(t, "3", m.Attributes[1].ValueString())
	assert.Equal(t, srv.URL+"/ipfs/"+cidV0, m.ImageURL(f.Gateway()))
}

func TestFetchPlainHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"plain"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	m, err := NewFetcher("https://unused.example", time.Second).Fetch(context.Background(), srv.URL+"/0.json")
	require.NoError(t, err)
	assert.Equal(t, "plain", m.Name)
	assert.Empty(t, m.Attributes)
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		default:
			w.Write([]byte(`<html>not json</html>`)) //nolint:errcheck
		}
	}))
	defer srv.Close()
	f := NewFetcher(srv.URL, time.Second)
	ctx := context.Background()

	_, err := f.Fetch(ctx, srv.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")

	_, err = f.Fetch(ctx, srv.URL+"/html")
	assert.ErrorContains(t, err, "parsing metadata")

	_, err = f.Fetch(ctx, "ftp://example.com/x.json")
	assert.ErrorIs(t, err, ErrBadURI)

	_, err = f.Fetch(ctx, "ipfs://garbage")
	assert.ErrorIs(t, err, ErrBadURI)
}

func TestFetchDataURI(t *testing.T) {
	f := NewFetcher("https://ipfs.io", time.Second)
	doc := `{"name":"On-chain","attributes":[{"trait_type":"Rare","value":true}]}`

	m, err := f.Fetch(context.Background(), "data:application/json;base64,"+base64.StdEncoding.EncodeToString([]byte(doc)))
	require.NoError(t, err)
	assert.Equal(t, "On-chain", m.Name)
	assert.Equal(t, "true", m.Attributes[0].ValueString())

	m, err = f.Fetch(context.Background(), `data:application/json,{"name":"Plain%20data"}`)
	require.NoError(t, err)
	assert.Equal(t, "Plain data", m.Name)

	_, err = f.Fetch(context.Background(), "data:image/png;base64,AAAA")
	assert.ErrorIs(t, err, ErrBadURI)
}
