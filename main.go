package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/solmcp/solana-mcp/internal/cluster"
	"github.com/solmcp/solana-mcp/internal/config"
	"github.com/solmcp/solana-mcp/internal/discovery"
	mcpserver "github.com/solmcp/solana-mcp/internal/server"
)

func main() {
	// Command line flags
	transport := flag.String("transport", "stdio", "Transport type: stdio, http")
	addr := flag.String("addr", ":8080", "HTTP server address (for http transport)")
	endpoint := flag.String("endpoint", "/mcp", "HTTP endpoint path (for http transport)")
	stateless := flag.Bool("stateless", false, "Run HTTP server in stateless mode")
	certFile := flag.String("tls-cert", "", "TLS certificate file (enables HTTPS)")
	keyFile := flag.String("tls-key", "", "TLS key file (enables HTTPS)")
	configFile := flag.String("config", "", "Optional config file overriding cluster endpoints")
	announce := flag.Bool("announce", false, "Announce the HTTP endpoint via mDNS")
	instance := flag.String("instance", "", "mDNS instance name (default: hostname plus random suffix)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// One immutable handle per network, shared by every tool for its cluster
	testnet := cluster.New("testnet", cfg.Clusters.Testnet.Endpoint, cfg.Clusters.Testnet.CommitmentType())
	mainnet := cluster.New("mainnet", cfg.Clusters.Mainnet.Endpoint, cfg.Clusters.Mainnet.CommitmentType())

	// Create the MCP server
	s := mcpserver.New(testnet, mainnet)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *transport {
	case "stdio":
		go func() {
			<-sigChan
			os.Exit(0)
		}()

		fmt.Fprintln(os.Stderr, "Starting MCP server...")

		if err := server.ServeStdio(s); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}

	case "http":
		// Build HTTP server options
		opts := []server.StreamableHTTPOption{
			server.WithEndpointPath(*endpoint),
			server.WithHeartbeatInterval(30 * time.Second),
		}

		if *stateless {
			opts = append(opts, server.WithStateLess(true))
		}

		if *certFile != "" && *keyFile != "" {
			opts = append(opts, server.WithTLSCert(*certFile, *keyFile))
		}

		// Create the HTTP server
		httpServer := server.NewStreamableHTTPServer(s, opts...)

		var announcer *discovery.Announcer
		if *announce {
			port, err := discovery.ParsePort(*addr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Cannot announce: %v\n", err)
				os.Exit(1)
			}

			name := *instance
			if name == "" {
				name = cfg.Discovery.Instance
			}
			if name == "" {
				name = discovery.DefaultInstanceName()
			}

			announcer = discovery.NewAnnouncer(discovery.ServiceInfo{
				InstanceName: name,
				Port:         port,
				Endpoint:     *endpoint,
				TLS:          *certFile != "",
				Clusters:     []string{testnet.Name, mainnet.Name},
				Note:         cfg.Discovery.Note,
			})
			if err := announcer.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "mDNS announce failed: %v\n", err)
				os.Exit(1)
			}
		}

		// Handle graceful shutdown
		go func() {
			<-sigChan
			fmt.Fprintln(os.Stderr, "Shutting down...")
			if announcer != nil {
				announcer.Stop()
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			httpServer.Shutdown(ctx)
			os.Exit(0)
		}()

		proto := "http"
		if *certFile != "" {
			proto = "https"
		}
		fmt.Fprintf(os.Stderr, "Starting MCP server on %s://%s%s\n", proto, *addr, *endpoint)

		if err := httpServer.Start(*addr); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown transport: %s (use 'stdio' or 'http')\n", *transport)
		os.Exit(1)
	}
}
