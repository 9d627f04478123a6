package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"www.velocidex.com/golang/ntfs-recover/parser"
)

// Environment variables such as NTFSRECOVER_CLUSTER_SIZE override the
// config file.
const EnvPrefix = "NTFSRECOVER"

// loadConfig merges the defaults, the optional config file and the
// environment into a parser.Config.
func loadConfig(config_file string) (parser.Config, error) {
	v := viper.New()

	defaults := parser.GetDefaultConfig()
	v.SetDefault("sector_size", defaults.SectorSize)
	v.SetDefault("cluster_size", defaults.ClusterSize)
	v.SetDefault("record_size", defaults.RecordSize)
	v.SetDefault("chunk_size", defaults.ChunkSize)
	v.SetDefault("page_size", defaults.PageSize)
	v.SetDefault("cache_size", defaults.CacheSize)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if config_file != "" {
		v.SetConfigFile(config_file)
		err := v.ReadInConfig()
		if err != nil {
			return parser.Config{}, fmt.Errorf("reading config file %v: %w",
				config_file, err)
		}
	}

	config := parser.Config{}
	err := v.Unmarshal(&config)
	if err != nil {
		return parser.Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if config.ClusterSize < 0 || config.RecordSize < 0 {
		return parser.Config{}, fmt.Errorf(
			"%w: negative geometry in config", parser.FormatError)
	}

	return config, nil
}
