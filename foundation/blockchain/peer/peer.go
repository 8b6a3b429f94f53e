// Package peer maintains the set of known peer nodes on the network.
package peer

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Parse normalizes a peer address into host:port form. It accepts a bare
// host:port or a URL such as http://host:port/ and rejects anything that
// does not resolve to a host and port.
func Parse(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("empty peer address")
	}

	host := addr
	if strings.Contains(addr, "://") {
		u, err := url.Parse(addr)
		if err != nil {
			return "", fmt.Errorf("parsing peer address %q: %w", addr, err)
		}
		host = u.Host
	}

	if _, _, err := net.SplitHostPort(host); err != nil {
		return "", fmt.Errorf("peer address %q is not host:port form: %w", addr, err)
	}

	return host, nil
}

// Set maintains the unique set of known peers. Peers are only ever added,
// never removed automatically.
type Set struct {
	mu  sync.RWMutex
	set map[string]struct{}
}

// NewSet constructs a set to manage known peers.
func NewSet() *Set {
	return &Set{
		set: make(map[string]struct{}),
	}
}

// Add normalizes the address and adds it to the set. It reports whether the
// peer was new and returns the normalized host:port form. Registration is
// idempotent: equivalent textual forms collapse to one entry.
func (s *Set) Add(addr string) (string, bool, error) {
	host, err := Parse(addr)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.set[host]; exists {
		return host, false, nil
	}

	s.set[host] = struct{}{}
	return host, true, nil
}

// Count returns the number of known peers.
func (s *Set) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.set)
}

// Copy returns the known peers in a stable order.
func (s *Set) Copy() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hosts := make([]string, 0, len(s.set))
	for host := range s.set {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	return hosts
}
