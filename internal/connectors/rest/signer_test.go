package rest

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // verifying RSA-SHA1 signatures
	"encoding/base64"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func testOAuthCreds(t *testing.T, key *rsa.PrivateKey) domain.OAuthCredentials {
	t.Helper()
	creds, err := domain.NewOAuthCredentials("ck", key, "tok", "ver")
	require.NoError(t, err)
	o, ok := creds.OAuth()
	require.True(t, ok)
	return o
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

// headerFields splits an OAuth header into ordered key/value pairs.
func headerFields(t *testing.T, header string) [][2]string {
	t.Helper()
	require.True(t, strings.HasPrefix(header, "OAuth "))
	var out [][2]string
	for _, part := range strings.Split(strings.TrimPrefix(header, "OAuth "), ",") {
		k, v, ok := strings.Cut(part, "=")
		require.True(t, ok, part)
		out = append(out, [2]string{k, strings.Trim(v, `"`)})
	}
	return out
}

func TestBasicHeader(t *testing.T) {
	t.Run("encodes user and password", func(t *testing.T) {
		assert.Equal(t, "Basic dXNlcjpwYXNz", BasicHeader("user", "pass"))
	})

	t.Run("signer ignores method and url", func(t *testing.T) {
		creds, err := domain.NewBasicCredentials("user", "pass")
		require.NoError(t, err)
		signer, err := NewSigner(creds)
		require.NoError(t, err)

		got := signer.Authorize("POST", mustParseURL(t, "https://example.com/x?y=1"))
		assert.Equal(t, "Basic dXNlcjpwYXNz", got)
	})
}

func TestNewSigner(t *testing.T) {
	t.Run("zero credentials are a config error", func(t *testing.T) {
		_, err := NewSigner(domain.Credentials{})
		require.Error(t, err)
		assert.True(t, domain.IsConfigError(err))
	})

	t.Run("oauth credentials select the oauth signer", func(t *testing.T) {
		creds, err := domain.NewOAuthCredentials("ck", testKey(t), "tok", "ver")
		require.NoError(t, err)
		signer, err := NewSigner(creds)
		require.NoError(t, err)
		_, ok := signer.(*OAuthSigner)
		assert.True(t, ok)
	})
}

func TestOAuthSigner_BaseString(t *testing.T) {
	signer := NewOAuthSigner(testOAuthCreds(t, testKey(t)))
	u := mustParseURL(t, "https://example.com/rest/api/content?start=0&limit=25")

	got := signer.BaseString("get", u, "abc", "1700000000")

	want := "GET&https%3A%2F%2Fexample.com%2Frest%2Fapi%2Fcontent&" +
		"limit%3D25%26oauth_consumer_key%3Dck%26oauth_nonce%3Dabc%26" +
		"oauth_signature_method%3DRSA-SHA1%26oauth_timestamp%3D1700000000%26" +
		"oauth_token%3Dtok%26oauth_verifier%3Dver%26start%3D0"
	assert.Equal(t, want, got)
}

func TestOAuthSigner_BaseStringSortsRepeatedKeysByValue(t *testing.T) {
	signer := NewOAuthSigner(testOAuthCreds(t, testKey(t)))
	u := mustParseURL(t, "https://example.com/p?a=2&a=1")

	got := signer.BaseString("GET", u, "n", "1")

	assert.Contains(t, got, "&a%3D1%26a%3D2%26oauth_consumer_key")
}

func TestOAuthSigner_Header(t *testing.T) {
	key := testKey(t)
	signer := NewOAuthSigner(testOAuthCreds(t, key))
	u := mustParseURL(t, "https://example.com/rest/api/2/search?jql=project%20%3D%20X")

	header := signer.Header("GET", u, "abc", "1700000000")

	t.Run("fields appear in fixed order without trailing comma", func(t *testing.T) {
		fields := headerFields(t, header)
		keys := make([]string, 0, len(fields))
		for _, f := range fields {
			keys = append(keys, f[0])
		}
		assert.Equal(t, []string{
			"oauth_consumer_key", "oauth_nonce", "oauth_signature",
			"oauth_signature_method", "oauth_timestamp", "oauth_token", "oauth_verifier",
		}, keys)
		assert.False(t, strings.HasSuffix(header, ","))
	})

	t.Run("signature verifies with the public key", func(t *testing.T) {
		var encoded string
		for _, f := range headerFields(t, header) {
			if f[0] == "oauth_signature" {
				encoded = f[1]
			}
		}
		raw, err := url.PathUnescape(encoded)
		require.NoError(t, err)
		sig, err := base64.StdEncoding.DecodeString(raw)
		require.NoError(t, err)

		digest := sha1.Sum([]byte(signer.BaseString("GET", u, "abc", "1700000000"))) //nolint:gosec
		require.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA1, digest[:], sig))

		tampered := sha1.Sum([]byte(signer.BaseString("POST", u, "abc", "1700000000"))) //nolint:gosec
		assert.Error(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA1, tampered[:], sig))
	})

	t.Run("identical inputs give identical headers", func(t *testing.T) {
		assert.Equal(t, header, signer.Header("GET", u, "abc", "1700000000"))
	})
}

func TestOAuthSigner_Authorize(t *testing.T) {
	t.Run("uses injected nonce and clock", func(t *testing.T) {
		fixed := time.Unix(1700000000, 0)
		signer := NewOAuthSigner(testOAuthCreds(t, testKey(t)),
			WithNonceSource(func() string { return "n1" }),
			WithClock(func() time.Time { return fixed }),
		)
		u := mustParseURL(t, "https://example.com/x")

		got := signer.Authorize("GET", u)

		assert.Equal(t, signer.Header("GET", u, "n1", "1700000000"), got)
	})

	t.Run("nonces differ between calls", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			n := RandomNonce()
			assert.False(t, seen[n], "duplicate nonce %s", n)
			seen[n] = true
		}
	})
}

func TestOAuthSigner_MissingKeySendsEmptySignature(t *testing.T) {
	signer := NewOAuthSigner(domain.OAuthCredentials{ConsumerKey: "ck", Token: "tok", Verifier: "ver"})

	header := signer.Header("GET", mustParseURL(t, "https://example.com/x"), "n", "1")

	assert.Contains(t, header, `oauth_signature="",`)
}

func TestPercentEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abcXYZ019", "abcXYZ019"},
		{"-._~", "-._~"},
		{"a b", "a%20b"},
		{"a+b", "a%2Bb"},
		{"/path?q=1&r", "%2Fpath%3Fq%3D1%26r"},
		{"é", "%C3%A9"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentEncode(tt.in))
		})
	}
}
