package repparams

import (
	"os"

	"github.com/naoina/toml"
)

// LoadConfig reads a TOML config file and overlays it on DefaultConfig.
// Grounded on the tos-network/gtos go.mod's naoina/toml dependency; absence
// of a corresponding config.go in the retrieval slice means the loading
// shape here is authored fresh, not copied, but the library choice is not.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
