package clipper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrNoItems is returned when a page has no list items to import.
	ErrNoItems = errors.New("no items found on page")
	// ErrUnsupportedURL is returned for anything but absolute http(s) URLs.
	ErrUnsupportedURL = errors.New("only http and https URLs can be imported")
	// ErrForbiddenAddress is returned when a URL resolves to a loopback,
	// private, link-local or otherwise non-public address.
	ErrForbiddenAddress = errors.New("address is not public")
)

const (
	maxItems     = 200
	maxPageBytes = 5 << 20
)

// carrier-grade NAT, not covered by netip.Addr.IsPrivate.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// ClippedList is a grocery list taken from a web page.
type ClippedList struct {
	Title string
	Items []string
}

// DefaultListName names imported pages that have no title.
const DefaultListName = "Lista importada"

// ListName returns requested when set, else the page title.
func (c ClippedList) ListName(requested string) string {
	switch {
	case strings.TrimSpace(requested) != "":
		return requested
	case c.Title != "":
		return c.Title
	default:
		return DefaultListName
	}
}

// Clipper fetches web pages (typically recipes) and turns their lists
// into grocery items.
type Clipper struct {
	client *http.Client
}

// NewClipper creates a new Clipper. A nil client gets PublicClient, so
// only pass a client of your own for trusted callers.
func NewClipper(client *http.Client) *Clipper {
	if client == nil {
		client = PublicClient(15 * time.Second)
	}
	return &Clipper{client: client}
}

// PublicClient returns an HTTP client that refuses to connect to anything
// but public unicast addresses. The check runs on every dial, after DNS
// resolution, so redirects and rebinding hosts are covered too.
func PublicClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: publicOnly,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			// No proxy, so the dial check sees the real destination.
			Proxy:               nil,
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, address)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, host)
	}
	if !IsPublic(ip) {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, ip)
	}
	return nil
}

// IsPublic reports whether ip is a globally routable unicast address.
func IsPublic(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case !ip.IsValid(),
		ip.IsUnspecified(),
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(),
		ip.IsMulticast(),
		sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}

// checkURL accepts absolute http and https URLs with a host.
func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrUnsupportedURL, raw)
	}
	return nil
}

// ClipURL fetches rawURL and extracts its title and list items. Pages are
// read up to 5 MiB.
func (c *Clipper) ClipURL(ctx context.Context, rawURL string) (ClippedList, error) {
	if err := checkURL(rawURL); err != nil {
		return ClippedList{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ClippedList{}, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return ClippedList{}, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ClippedList{}, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}
	return Extract(io.LimitReader(resp.Body, maxPageBytes))
}

// Extract reads an HTML document. Lists under an ingredients heading or
// inside an element whose class mentions "ingredient" win; otherwise every
// list item of the page is used.
func Extract(r io.Reader) (ClippedList, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ClippedList{}, fmt.Errorf("failed to parse html: %w", err)
	}

	// Remove noise
	doc.Find("script, style, nav, footer, header, iframe, aside, .ads, #ads").Remove()

	title := clean(doc.Find("h1").First().Text())
	if title == "" {
		title = clean(doc.Find("title").First().Text())
	}

	items := collect(doc.Find(`[class*="ingredient"] li, li[class*="ingredient"]`))
	if len(items) == 0 {
		doc.Find("h2, h3").Each(func(_ int, h *goquery.Selection) {
			heading := strings.ToLower(h.Text())
			if strings.Contains(heading, "ingredient") {
				items = append(items, collect(h.NextAllFiltered("ul, ol").First().Find("li"))...)
			}
		})
	}
	if len(items) == 0 {
		items = collect(doc.Find("body li"))
	}
	if len(items) == 0 {
		return ClippedList{}, ErrNoItems
	}
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return ClippedList{Title: title, Items: items}, nil
}

func collect(sel *goquery.Selection) []string {
	var items []string
	seen := make(map[string]bool)
	sel.Each(func(_ int, s *goquery.Selection) {
		text := clean(s.Text())
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		items = append(items, text)
	})
	return items
}

// clean collapses whitespace.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
