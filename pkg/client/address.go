package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// DefaultPort is used when neither the address nor an SRV record names a port.
const DefaultPort = 25565

var (
	addressChars = regexp.MustCompile(`^[0-9A-Za-z\-.:\[\]]+$`)
	domainName   = regexp.MustCompile(`^[0-9A-Za-z-]+(\.[0-9A-Za-z-]+)+$`)
)

// ErrInvalidAddress is returned by ParseAddress.
var ErrInvalidAddress = errors.New("client: invalid server address")

// Address is a server host and port. Port 0 means no port was given.
type Address struct {
	Host string
	Port uint16
}

func (a Address) String() string {
	port := a.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(int(port)))
}

// ParseAddress splits "host", "host:port", "[v6]" or "[v6]:port". A bare
// IPv6 address without brackets is accepted without a port.
func ParseAddress(s string) (Address, error) {
	if !addressChars.MatchString(s) {
		return Address{}, fmt.Errorf("%w: %q contains invalid characters", ErrInvalidAddress, s)
	}

	var host, port string
	switch {
	case strings.HasPrefix(s, "["):
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		host = s[1:end]
		if rest := s[end+1:]; rest != "" {
			if !strings.HasPrefix(rest, ":") {
				return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
			}
			port = rest[1:]
		}
	case strings.Count(s, ":") > 1:
		host = s
	case strings.Contains(s, ":"):
		host, port, _ = strings.Cut(s, ":")
	default:
		host = s
	}
	if host == "" {
		return Address{}, fmt.Errorf("%w: %q has no host", ErrInvalidAddress, s)
	}

	a := Address{Host: host}
	if port != "" {
		p, err := strconv.ParseUint(port, 10, 16)
		if err != nil || p == 0 {
			return Address{}, fmt.Errorf("%w: bad port %q", ErrInvalidAddress, port)
		}
		a.Port = uint16(p)
	}
	return a, nil
}

// Resolver looks up SRV records. *net.Resolver implements it.
type Resolver interface {
	LookupSRV(ctx context.Context, service, proto, name string) (string, []*net.SRV, error)
}

// ResolveAddress fills in the port of a. Domain names without a port are
// looked up as _minecraft._tcp SRV records; IP literals, single-label
// names and failed lookups fall back to DefaultPort.
func ResolveAddress(ctx context.Context, r Resolver, a Address) Address {
	if a.Port != 0 {
		return a
	}
	fallback := Address{Host: a.Host, Port: DefaultPort}
	if net.ParseIP(a.Host) != nil || !isDomainName(a.Host) {
		return fallback
	}
	if r == nil {
		r = net.DefaultResolver
	}
	_, records, err := r.LookupSRV(ctx, "minecraft", "tcp", a.Host)
	if err != nil || len(records) == 0 {
		return fallback
	}
	return Address{Host: strings.TrimSuffix(records[0].Target, "."), Port: records[0].Port}
}

func isDomainName(host string) bool {
	return domainName.MatchString(host) &&
		!strings.HasPrefix(host, "-") &&
		!strings.HasSuffix(host, "-")
}
