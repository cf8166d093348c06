package proxy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Blocklist holds hosts the proxy refuses to contact. A nil Blocklist blocks
// nothing.
type Blocklist struct {
	hosts map[string]struct{}
}

// LoadBlocklist reads one host per line from path. Blank lines and lines
// starting with '#' are ignored.
func LoadBlocklist(path string) (*Blocklist, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open blocklist: %w", err)
	}
	defer file.Close()

	bl, err := ParseBlocklist(file)
	if err != nil {
		return nil, fmt.Errorf("error reading blocklist %s: %w", path, err)
	}
	return bl, nil
}

func ParseBlocklist(r io.Reader) (*Blocklist, error) {
	bl := &Blocklist{hosts: make(map[string]struct{})}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		host := strings.TrimSpace(scanner.Text())
		if host == "" || strings.HasPrefix(host, "#") {
			continue
		}
		bl.hosts[normalizeHost(host)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return bl, nil
}

// Blocked reports whether host matches an entry, ignoring case and a
// trailing root dot.
func (b *Blocklist) Blocked(host string) bool {
	if b == nil {
		return false
	}
	host = normalizeHost(host)
	if host == "" {
		return false
	}
	_, ok := b.hosts[host]
	return ok
}

func normalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

func (b *Blocklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.hosts)
}
