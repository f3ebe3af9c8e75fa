package config

import "github.com/spf13/pflag"

// InspectConfig holds configuration for checking a deployed pool over RPC.
type InspectConfig struct {
	RPCURL   string
	Pool     string
	Block    uint64
	LogLevel string
}

// LoadInspect merges config file, environment variables, and flags into InspectConfig.
func LoadInspect(cfgFile string, flags *pflag.FlagSet) (InspectConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"log-level": "info",
	})
	if err != nil {
		return InspectConfig{}, err
	}

	return InspectConfig{
		RPCURL:   v.GetString("rpc"),
		Pool:     v.GetString("pool"),
		Block:    v.GetUint64("block"),
		LogLevel: v.GetString("log-level"),
	}, nil
}
