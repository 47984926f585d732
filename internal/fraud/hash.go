package fraud

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"net"
)

// HashIP returns the hex SHA-256 of the caller IP. Raw IPs are never stored.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// CompoundHash combines the IP hash with the User-Agent into a fallback
// session identifier for clients that send no fingerprint.
func CompoundHash(ipHash, userAgent string) string {
	sum := sha256.Sum256([]byte(ipHash + ":" + userAgent))
	return hex.EncodeToString(sum[:])
}

// Fixed public pool used when mocking of private addresses is enabled, so
// local clicks still exercise geo and fraud state.
var mockPublicIPs = []string{"8.8.8.8", "200.147.67.142", "85.214.132.117", "185.230.125.1"}

// IsPrivateIP reports whether ip is a loopback or private-range address.
func IsPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsPrivate()
}

// MockPublicIP picks a uniformly random address from the fixed pool.
func MockPublicIP() string {
	return mockPublicIPs[rand.Intn(len(mockPublicIPs))]
}
