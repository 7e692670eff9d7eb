package config

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"

	"github.com/solmcp/solana-mcp/internal/cluster"
)

// Config holds the endpoint and discovery settings for the server. The
// defaults match the public Solana cluster endpoints; a config file and
// SOLANA_MCP_* environment variables can override them.
type Config struct {
	Clusters  ClustersConfig  `mapstructure:"clusters"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
}

type ClustersConfig struct {
	Testnet ClusterConfig `mapstructure:"testnet"`
	Mainnet ClusterConfig `mapstructure:"mainnet"`
}

type ClusterConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	Commitment string `mapstructure:"commitment"`
}

type DiscoveryConfig struct {
	Instance string `mapstructure:"instance"`
	Note     string `mapstructure:"note"`
}

// Load reads configuration from the optional file at path, layered over
// defaults and environment overrides (SOLANA_MCP_CLUSTERS_MAINNET_ENDPOINT
// and friends). An empty path skips the file entirely.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("clusters.testnet.endpoint", cluster.TestnetEndpoint)
	v.SetDefault("clusters.testnet.commitment", "finalized")
	v.SetDefault("clusters.mainnet.endpoint", cluster.MainnetEndpoint)
	v.SetDefault("clusters.mainnet.commitment", "finalized")
	v.SetDefault("discovery.instance", "")
	v.SetDefault("discovery.note", "")

	v.SetEnvPrefix("SOLANA_MCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	for name, cc := range map[string]ClusterConfig{
		"testnet": c.Clusters.Testnet,
		"mainnet": c.Clusters.Mainnet,
	} {
		if strings.TrimSpace(cc.Endpoint) == "" {
			return fmt.Errorf("clusters.%s.endpoint is required", name)
		}
		if _, err := ParseCommitment(cc.Commitment); err != nil {
			return fmt.Errorf("clusters.%s.commitment: %w", name, err)
		}
	}
	return nil
}

// ParseCommitment maps the config string to an RPC commitment level.
// An empty string means finalized.
func ParseCommitment(s string) (rpc.CommitmentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "processed":
		return rpc.CommitmentProcessed, nil
	case "confirmed":
		return rpc.CommitmentConfirmed, nil
	case "finalized", "":
		return rpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("unknown commitment level %q", s)
	}
}

// CommitmentType returns the parsed commitment for a cluster config.
// Validate has already rejected unknown levels by the time this is called.
func (cc ClusterConfig) CommitmentType() rpc.CommitmentType {
	ct, err := ParseCommitment(cc.Commitment)
	if err != nil {
		return rpc.CommitmentFinalized
	}
	return ct
}
