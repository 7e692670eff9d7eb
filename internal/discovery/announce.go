package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/hashicorp/mdns"
)

// Announcer announces a solana-mcp HTTP endpoint via mDNS
type Announcer struct {
	server *mdns.Server
	info   ServiceInfo
}

// NewAnnouncer creates a new mDNS announcer for the given service info
func NewAnnouncer(info ServiceInfo) *Announcer {
	return &Announcer{info: info}
}

// Start begins announcing the service via mDNS
func (a *Announcer) Start() error {
	txtRecords := []string{
		fmt.Sprintf("endpoint=%s", a.info.Endpoint),
		fmt.Sprintf("tls=%t", a.info.TLS),
		fmt.Sprintf("clusters=%s", strings.Join(a.info.Clusters, ",")),
	}
	if a.info.Note != "" {
		txtRecords = append(txtRecords, fmt.Sprintf("note=%s", a.info.Note))
	}

	ips, err := announceIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		a.info.InstanceName,
		ServiceType,
		"", // domain (empty = .local)
		"", // host (empty = auto)
		a.info.Port,
		ips,
		txtRecords,
	)
	if err != nil {
		return fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to start mDNS server: %w", err)
	}

	a.server = server
	return nil
}

// Stop stops announcing the service
func (a *Announcer) Stop() error {
	if a.server != nil {
		return a.server.Shutdown()
	}
	return nil
}

// announceIPs returns the local unicast addresses worth announcing,
// falling back to localhost when the host has none.
func announceIPs() ([]net.IP, error) {
	var ips []net.IP

	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if ip != nil && !ip.IsLoopback() && !ip.IsLinkLocalUnicast() {
				ips = append(ips, ip)
			}
		}
	}

	if len(ips) == 0 {
		ips = append(ips, net.ParseIP("127.0.0.1"))
	}

	return ips, nil
}

// ParsePort extracts the port number from an address string like ":8080" or "0.0.0.0:8080"
func ParsePort(addr string) (int, error) {
	idx := strings.LastIndex(addr, ":")
	if idx == -1 {
		return 0, fmt.Errorf("no port in address: %s", addr)
	}
	return strconv.Atoi(addr[idx+1:])
}
