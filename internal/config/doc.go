// Package config defines the typed configuration of wordsmith and loads it
// from viper (config file, WORDSMITH_ environment variables, bound flags),
// validating the result before any component is built from it.
package config
