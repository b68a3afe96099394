package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// SnapshotProxy downloads camera stills from an allow-list of hosts.
type SnapshotProxy struct {
	allowed  []string
	maxBytes int64
	up       *upstream
}

// NewSnapshotProxy allows hosts equal to, or subdomains of, allowedHosts.
func NewSnapshotProxy(client *http.Client, allowedHosts []string, maxBytes int64) *SnapshotProxy {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	hosts := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	p := &SnapshotProxy{allowed: hosts, maxBytes: maxBytes}

	// Every redirect hop must pass the same checks as the first URL.
	var proxyClient *http.Client
	if client != nil {
		c := *client
		c.CheckRedirect = p.checkRedirect
		proxyClient = &c
	}

	backoff := DefaultBackoff
	backoff.MaxRetries = 0
	p.up = newUpstream("snapshot", HTTPClientConfig{Client: proxyClient, Backoff: backoff})
	return p
}

const maxSnapshotRedirects = 5

func (p *SnapshotProxy) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxSnapshotRedirects {
		return fmt.Errorf("snapshot: stopped after %d redirects", len(via))
	}
	return p.checkURL(req.URL)
}

func (p *SnapshotProxy) checkURL(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("snapshot: %w: scheme %q", worldview.ErrHostNotAllowed, u.Scheme)
	}
	if !p.hostAllowed(u.Hostname()) {
		return fmt.Errorf("snapshot: %w: %s", worldview.ErrHostNotAllowed, u.Hostname())
	}
	return nil
}

func (p *SnapshotProxy) hostAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, h := range p.allowed {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func (p *SnapshotProxy) FetchSnapshot(ctx context.Context, rawURL string) (worldview.Snapshot, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return worldview.Snapshot{}, fmt.Errorf("snapshot: parse url: %w", err)
	}
	if err := p.checkURL(u); err != nil {
		return worldview.Snapshot{}, err
	}

	body, contentType, err := p.up.getBody(ctx, u.String(), nil, p.maxBytes)
	if err != nil {
		return worldview.Snapshot{}, err
	}
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return worldview.Snapshot{ContentType: contentType, Body: body}, nil
}
