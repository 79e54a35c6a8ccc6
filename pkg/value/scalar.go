package value

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/netip"
	"slices"
	"strconv"
	"strings"
)

// String accepts any non-empty token verbatim.
func String() Codec[string] {
	return New(
		func(s string) (string, error) { return s, nil },
		func(s string) string { return s },
	)
}

// Int parses a signed decimal integer.
func Int() Codec[int64] {
	return New(
		func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) },
		func(v int64) string { return strconv.FormatInt(v, 10) },
	)
}

// Uint parses an unsigned decimal integer.
func Uint() Codec[uint64] {
	return New(
		func(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) },
		func(v uint64) string { return strconv.FormatUint(v, 10) },
	)
}

// Bool accepts yes/no as printed by the device, and true/false as written
// by people. It always encodes yes/no.
func Bool() Codec[bool] {
	return New(
		func(s string) (bool, error) {
			switch strings.ToLower(s) {
			case "yes", "true":
				return true, nil
			case "no", "false":
				return false, nil
			}
			return false, errors.New("expected yes or no")
		},
		func(v bool) string {
			if v {
				return "yes"
			}
			return "no"
		},
	)
}

// Enum accepts exactly one of the given tokens.
func Enum(tokens ...string) Codec[string] {
	allowed := slices.Clone(tokens)
	return New(
		func(s string) (string, error) {
			if slices.Contains(allowed, s) {
				return s, nil
			}
			return "", fmt.Errorf("expected one of %s", strings.Join(allowed, ", "))
		},
		func(s string) string { return s },
	)
}

// Addr parses an IPv4 or IPv6 address.
func Addr() Codec[netip.Addr] {
	return New(netip.ParseAddr, netip.Addr.String)
}

// Prefix parses an address with prefix length. A bare address is taken as
// a host prefix (/32 or /128), matching how the device prints host routes.
func Prefix() Codec[netip.Prefix] {
	return New(
		func(s string) (netip.Prefix, error) {
			if !strings.Contains(s, "/") {
				addr, err := netip.ParseAddr(s)
				if err != nil {
					return netip.Prefix{}, err
				}
				return netip.PrefixFrom(addr, addr.BitLen()), nil
			}
			return netip.ParsePrefix(s)
		},
		netip.Prefix.String,
	)
}

// MAC parses a hardware address and encodes it upper-case, colon separated.
func MAC() Codec[string] {
	return New(
		func(s string) (string, error) {
			hw, err := net.ParseMAC(s)
			if err != nil {
				return "", err
			}
			return strings.ToUpper(hw.String()), nil
		},
		func(s string) string { return s },
	)
}

var rateUnits = []struct {
	suffix string
	factor uint64
}{
	{"G", 1_000_000_000},
	{"M", 1_000_000},
	{"k", 1_000},
}

// Rate parses bit rates such as 512k, 10M or 1G.
func Rate() Codec[uint64] {
	return New(parseRate, encodeRate)
}

func parseRate(s string) (uint64, error) {
	for _, u := range rateUnits {
		if num, ok := strings.CutSuffix(s, u.suffix); ok {
			return scaleRate(num, u.factor)
		}
		if u.suffix == "k" {
			if num, ok := strings.CutSuffix(s, "K"); ok {
				return scaleRate(num, u.factor)
			}
		}
	}
	return strconv.ParseUint(s, 10, 64)
}

func scaleRate(num string, factor uint64) (uint64, error) {
	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint64/factor {
		return 0, fmt.Errorf("rate %s*%d overflows", num, factor)
	}
	return n * factor, nil
}

func encodeRate(v uint64) string {
	if v == 0 {
		return "0"
	}
	for _, u := range rateUnits {
		if v%u.factor == 0 {
			return strconv.FormatUint(v/u.factor, 10) + u.suffix
		}
	}
	return strconv.FormatUint(v, 10)
}
