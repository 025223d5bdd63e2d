package quiz

import (
	"net"
	"strconv"
	"strings"

	"csshub/backend/models"
)

const unknownIP = "unknown"

type identityKind int

const (
	kindAnonymous identityKind = iota
	kindAuthenticated
)

// Identity is who a quiz request is attributed to: an authenticated user,
// or an anonymous caller keyed by client IP. Resolve it once per request.
type Identity struct {
	kind   identityKind
	userID uint
	tier   string
	ip     string
}

func Authenticated(userID uint, tier string) Identity {
	switch tier {
	case models.TierPro, models.TierPremium:
	default:
		tier = models.TierFree
	}
	return Identity{kind: kindAuthenticated, userID: userID, tier: tier}
}

func Anonymous(ip string) Identity {
	return Identity{kind: kindAnonymous, ip: NormalizeIP(ip)}
}

func (i Identity) IsAuthenticated() bool {
	return i.kind == kindAuthenticated
}

func (i Identity) UserID() (uint, bool) {
	return i.userID, i.kind == kindAuthenticated
}

// Tier is empty for anonymous callers.
func (i Identity) Tier() string {
	return i.tier
}

func (i Identity) IP() string {
	if i.kind == kindAuthenticated {
		return ""
	}
	if i.ip == "" {
		return unknownIP
	}
	return i.ip
}

// Key is the rate-limiting and caching key.
func (i Identity) Key() string {
	if i.kind == kindAuthenticated {
		return "user:" + strconv.FormatUint(uint64(i.userID), 10)
	}
	return "ip:" + i.IP()
}

func (i Identity) String() string {
	return i.Key()
}

// NormalizeIP reduces the many spellings of a client address to one:
// forwarded lists keep the first hop, ports and brackets are dropped and
// IPv4-mapped IPv6 becomes plain IPv4.
func NormalizeIP(raw string) string {
	s := strings.TrimSpace(raw)
	if idx := strings.IndexByte(s, ','); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
	}
	if s == "" {
		return unknownIP
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.Trim(s, "[]")

	ip := net.ParseIP(s)
	if ip == nil {
		return strings.ToLower(s)
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.String()
	}
	return ip.String()
}
