// Package config loads the proxy configuration from YAML and environment
// variables with viper, validates it with ozzo-validation and can watch the
// file for changes.
//
// Durations are kept as strings in the decoded structs and validated at load
// time; the *Duration accessors parse them.
package config
