// Package cli provides command-line interface setup and configuration
// for the wordsmith application. It handles flag parsing, command
// creation, configuration via viper and the wiring of services into the
// interactive shell.
package cli
