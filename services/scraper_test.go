package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGuardedEnricher keeps the production transport, so the loopback test
// server is unreachable through it.
func newGuardedEnricher(t *testing.T, handler http.HandlerFunc) (*SiteEnricher, *httptest.Server, *int) {
	t.Helper()
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	e := NewSiteEnricher(5*time.Second, time.Hour)
	e.urlFor = func(string) string { return server.URL }
	return e, server, &hits
}

func newTestEnricher(t *testing.T, handler http.HandlerFunc) (*SiteEnricher, *int) {
	t.Helper()
	e, server, hits := newGuardedEnricher(t, handler)
	e.client = server.Client()
	return e, hits
}

func TestSiteEnricher_MetaDescription(t *testing.T) {
	e, hits := newTestEnricher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Acme</title>
			<meta name="description" content="  Anvils,   rockets and
			more. "></head><body>hi</body></html>`))
	})

	desc, ok := e.Describe(context.Background(), "https://www.Acme.com/about")
	assert.True(t, ok)
	assert.Equal(t, "Anvils, rockets and more.", desc)

	// second lookup is served from cache
	desc, ok = e.Describe(context.Background(), "www.acme.com")
	assert.True(t, ok)
	assert.Equal(t, "Anvils, rockets and more.", desc)
	assert.Equal(t, 1, *hits)
}

func TestSiteEnricher_FallsBackToTitle(t *testing.T) {
	e, _ := newTestEnricher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Acme Corporation</title></head></html>`))
	})

	desc, ok := e.Describe(context.Background(), "acme.com")
	assert.True(t, ok)
	assert.Equal(t, "Acme Corporation", desc)
}

func TestSiteEnricher_ErrorsAreMisses(t *testing.T) {
	e, hits := newTestEnricher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, ok := e.Describe(context.Background(), "acme.com")
	assert.False(t, ok)
	_, ok = e.Describe(context.Background(), "acme.com")
	assert.False(t, ok)
	assert.Equal(t, 1, *hits)
}

func TestSiteEnricher_SkipsPlaceholders(t *testing.T) {
	e, hits := newTestEnricher(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, d := range []string{
		"", "Unknown", "not a domain", "localhost",
		"127.0.0.1", "http://169.254.169.254/latest/meta-data", "10.0.0.8", "[::1]",
		"localhost.localdomain", "metadata.google.internal", "printer.local",
	} {
		_, ok := e.Describe(context.Background(), d)
		assert.False(t, ok, d)
	}
	assert.Zero(t, *hits)
}

func TestSiteEnricher_RefusesInternalAddresses(t *testing.T) {
	e, _, hits := newGuardedEnricher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>internal admin</title></head></html>`))
	})

	// the name passes the hostname check but lands on loopback at dial time
	desc, ok := e.Describe(context.Background(), "127.0.0.1.nip.io")
	assert.False(t, ok)
	assert.Empty(t, desc)
	assert.Zero(t, *hits)
}

func TestSiteEnricher_RedirectToInternalIsMiss(t *testing.T) {
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>secret</title></head></html>`))
	}))
	defer internal.Close()

	e, _ := newTestEnricher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, internal.URL, http.StatusFound)
	})
	e.client.CheckRedirect = checkEnrichRedirect

	_, ok := e.Describe(context.Background(), "acme.com")
	assert.False(t, ok)
}

func TestCheckEnrichRedirect(t *testing.T) {
	req := func(raw string) *http.Request {
		r, err := http.NewRequest(http.MethodGet, raw, nil)
		require.NoError(t, err)
		return r
	}

	assert.NoError(t, checkEnrichRedirect(req("https://www.acme.com/"), nil))
	assert.ErrorIs(t, checkEnrichRedirect(req("http://169.254.169.254/"), nil), errBlockedAddress)
	assert.Error(t, checkEnrichRedirect(req("ftp://acme.com/"), nil))

	via := make([]*http.Request, maxEnrichRedirects)
	assert.Error(t, checkEnrichRedirect(req("https://acme.com/"), via))
}

func TestPublicOnlyControl(t *testing.T) {
	tests := []struct {
		addr   string
		public bool
	}{
		{"93.184.216.34:443", true},
		{"[2606:2800:220:1:248:1893:25c8:1946]:443", true},
		{"127.0.0.1:443", false},
		{"10.1.2.3:80", false},
		{"172.16.0.1:80", false},
		{"192.168.1.1:80", false},
		{"169.254.169.254:80", false},
		{"100.64.0.1:80", false},
		{"0.0.0.0:80", false},
		{"[::1]:443", false},
		{"[fe80::1]:443", false},
		{"[fd00::1]:443", false},
		{"[::ffff:127.0.0.1]:443", false},
	}
	for _, tt := range tests {
		err := publicOnlyControl("tcp", tt.addr, nil)
		if tt.public {
			assert.NoError(t, err, tt.addr)
		} else {
			assert.ErrorIs(t, err, errBlockedAddress, tt.addr)
		}
	}
}

func TestClean_CutsOnRuneBoundary(t *testing.T) {
	got := clean(strings.Repeat("a", 499) + "ü tail")
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 499), got)
}

func TestSiteCache_Expires(t *testing.T) {
	c := newSiteCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("Acme.com", "desc", true)
	desc, found, hit := c.Get("acme.com")
	assert.True(t, hit)
	assert.True(t, found)
	assert.Equal(t, "desc", desc)

	now = now.Add(2 * time.Minute)
	_, _, hit = c.Get("acme.com")
	assert.False(t, hit)
}
