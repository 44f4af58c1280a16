package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "MOSDACBOT_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "mosdacbot.yaml"

	appDir = "mosdacbot"
)

// candidates returns the config file locations in lookup order
func candidates(lookup func(string) (string, bool)) []string {
	var out []string
	if p, ok := lookup(EnvConfigPath); ok && p != "" {
		out = append(out, p)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		out = append(out, abs)
	} else {
		out = append(out, ConfigFileName)
	}
	if dir := userConfigDir(lookup); dir != "" {
		out = append(out, filepath.Join(dir, appDir, "config.yaml"))
	}
	return append(out, filepath.Join("/etc", appDir, "config.yaml"))
}

// userConfigDir is $XDG_CONFIG_HOME, else ~/.config, else ""
func userConfigDir(lookup func(string) (string, bool)) string {
	if xdg, ok := lookup("XDG_CONFIG_HOME"); ok && xdg != "" {
		return xdg
	}
	if home, ok := lookup("HOME"); ok && home != "" {
		return filepath.Join(home, ".config")
	}
	return ""
}

func findConfig(lookup func(string) (string, bool), exists func(string) bool) string {
	for _, p := range candidates(lookup) {
		if exists(p) {
			return p
		}
	}
	return ""
}

// FindConfigPath returns the first existing config file, or "" when there is none
func FindConfigPath() string {
	return findConfig(os.LookupEnv, func(p string) bool {
		info, err := os.Stat(p)
		return err == nil && !info.IsDir()
	})
}

// DefaultConfigPath is where -init-config writes a new file
func DefaultConfigPath() string {
	if dir := userConfigDir(os.LookupEnv); dir != "" {
		return filepath.Join(dir, appDir, "config.yaml")
	}
	return ConfigFileName
}

// resolveRelative anchors the file paths named in a config file to the
// directory holding it, so a config and its catalog can move together.
// Environment overrides are applied afterwards and stay relative to the
// working directory.
func (c *Config) resolveRelative(baseDir string) {
	for _, p := range []*string{&c.Catalog.Path, &c.NLP.RulesPath, &c.NLP.TemplatesPath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
}
