package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tadeyemo32/strategai-backend/logger"
)

var spaceRe = regexp.MustCompile(`\s+`)

const maxEnrichRedirects = 3

var errBlockedAddress = errors.New("refusing to fetch non-public address")

// SiteEnricher reads a company's homepage for a short self-description.
type SiteEnricher struct {
	client *http.Client
	cache  *siteCache
	urlFor func(domain string) string
}

// NewSiteEnricher only ever connects to public unicast addresses. The check
// runs on the resolved IP at dial time, so DNS names pointing inward and
// redirects to internal hosts are refused as well.
func NewSiteEnricher(timeout, ttl time.Duration) *SiteEnricher {
	dialer := &net.Dialer{Timeout: timeout, Control: publicOnlyControl}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &SiteEnricher{
		client: &http.Client{
			Timeout:       timeout,
			Transport:     transport,
			CheckRedirect: checkEnrichRedirect,
		},
		cache:  newSiteCache(ttl),
		urlFor: func(domain string) string { return "https://" + domain },
	}
}

func publicOnlyControl(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", errBlockedAddress, host)
	}
	if !isPublicAddr(ip) {
		return fmt.Errorf("%w: %s", errBlockedAddress, ip)
	}
	return nil
}

func isPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsGlobalUnicast() &&
		!ip.IsPrivate() &&
		!ip.IsLoopback() &&
		!ip.IsLinkLocalUnicast() &&
		!sharedAddressSpace.Contains(ip)
}

// carrier-grade NAT range, not covered by IsPrivate
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func checkEnrichRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxEnrichRedirects {
		return fmt.Errorf("stopped after %d redirects", maxEnrichRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("redirect to unsupported scheme %q", req.URL.Scheme)
	}
	if cleanDomain(req.URL.String()) == "" {
		return fmt.Errorf("%w: redirect to %s", errBlockedAddress, req.URL.Host)
	}
	return nil
}

// Describe returns the homepage's meta description (or title) for domain.
// Any failure is a miss; results are cached either way.
func (e *SiteEnricher) Describe(ctx context.Context, domain string) (string, bool) {
	domain = cleanDomain(domain)
	if domain == "" {
		return "", false
	}
	if desc, found, hit := e.cache.Get(domain); hit {
		return desc, found
	}

	desc, err := e.fetchDescription(ctx, domain)
	if err != nil {
		logger.Log.Warnf("[Enrich] %s: %v", domain, err)
		e.cache.Set(domain, "", false)
		return "", false
	}
	e.cache.Set(domain, desc, desc != "")
	return desc, desc != ""
}

func (e *SiteEnricher) fetchDescription(ctx context.Context, domain string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.urlFor(domain), nil)
	if err != nil {
		return "", err
	}
	// Mimic a real browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed fetching homepage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("homepage returned HTTP status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = clean(v); v != "" {
				return v, nil
			}
		}
	}
	return clean(doc.Find("title").First().Text()), nil
}

func clean(s string) string {
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	return cutRunes(s, 500)
}

// cleanDomain turns "https://www.Acme.com/about" into "www.acme.com".
// Placeholders, IP literals, local names and anything that is not a
// hostname give "".
func cleanDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, Unknown) {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if !strings.Contains(host, ".") || strings.ContainsAny(host, " _") {
		return ""
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return ""
	}
	for _, suffix := range localSuffixes {
		if strings.HasSuffix(host, suffix) {
			return ""
		}
	}
	return host
}

var localSuffixes = []string{".localhost", ".localdomain", ".local", ".internal", ".lan", ".home.arpa"}
