package transmit

import (
	"net"
	"net/url"
	"sync"
	"time"
)

// DialProbe reports reachability of the backend host by opening a TCP
// connection. Results are cached briefly so the hot ingestion path does
// not dial on every reading.
type DialProbe struct {
	addr    string
	timeout time.Duration
	ttl     time.Duration

	mu      sync.Mutex
	online  bool
	checked time.Time
}

// Compile-time check: DialProbe satisfies Probe.
var _ Probe = (*DialProbe)(nil)

// NewDialProbe builds a probe for the backend base URL.
func NewDialProbe(baseURL string, timeout, ttl time.Duration) (*DialProbe, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host = net.JoinHostPort(u.Hostname(), "443")
		default:
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &DialProbe{addr: host, timeout: timeout, ttl: ttl}, nil
}

// Online dials the backend host, reusing the last result within the
// cache TTL.
func (p *DialProbe) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.checked) < p.ttl {
		return p.online
	}

	conn, err := net.DialTimeout("tcp", p.addr, p.timeout)
	if err == nil {
		conn.Close()
	}
	p.online = err == nil
	p.checked = time.Now()
	return p.online
}
