package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

const configFile = "revstore.toml"

// Config stores repository-local settings.
type Config struct {
	Store StoreConfig `toml:"store"`
	Log   LogConfig   `toml:"log"`
}

// StoreConfig tunes the revlog store.
type StoreConfig struct {
	// EncodeCache is how many encoded names to memoise; 0 disables it.
	EncodeCache int `toml:"encode_cache"`
}

// LogConfig selects the log level of the command-line tool.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig is the configuration of a repository without a config
// file.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{EncodeCache: 1024},
		Log:   LogConfig{Level: "info"},
	}
}

func configPath(fsys billy.Filesystem, hgDir string) string {
	return fsys.Join(hgDir, configFile)
}

// readConfig reads .hg/revstore.toml over the defaults. Missing config
// returns the defaults.
func readConfig(fsys billy.Filesystem, hgDir string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := util.ReadFile(fsys, configPath(fsys, hgDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("read config: decode: %w", err)
	}
	if cfg.Store.EncodeCache < 0 {
		return nil, fmt.Errorf("read config: store.encode_cache must not be negative, got %d", cfg.Store.EncodeCache)
	}
	return cfg, nil
}

// ReadConfig re-reads .hg/revstore.toml.
func (r *Repo) ReadConfig() (*Config, error) {
	return readConfig(r.fs, r.HgDir)
}

// WriteConfig atomically writes .hg/revstore.toml. The new settings apply
// the next time the repository is opened.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}

	tmp, err := r.fs.TempFile(r.HgDir, ".config-tmp-")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		r.fs.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := r.fs.Rename(tmpName, configPath(r.fs, r.HgDir)); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	r.Config = cfg
	return nil
}
