package discovery

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// ServiceType is the mDNS service type for solana-mcp servers
const ServiceType = "_solana-mcp._tcp"

// ServiceInfo describes one announced solana-mcp HTTP endpoint
type ServiceInfo struct {
	InstanceName string   // Unique instance name
	Port         int      // Port number
	Endpoint     string   // HTTP endpoint path (e.g., "/mcp")
	TLS          bool     // Whether TLS is enabled
	Clusters     []string // Cluster names served (e.g., testnet, mainnet)
	Note         string   // Human-readable description
}

// DefaultInstanceName returns the sanitized hostname with a short random
// suffix so two servers on one LAN do not collide.
func DefaultInstanceName() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "solana-mcp"
	}
	return fmt.Sprintf("%s-%s", sanitizeInstanceName(hostname), uuid.NewString()[:8])
}

// sanitizeInstanceName makes a name safe for use as an mDNS instance name
func sanitizeInstanceName(name string) string {
	name = strings.ToLower(name)
	var result strings.Builder
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			result.WriteRune(r)
		case r == '.' || r == ' ' || r == '-' || r == '_':
			result.WriteRune('-')
		}
	}
	return strings.Trim(result.String(), "-")
}
