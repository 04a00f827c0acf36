// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation and are decoded strictly: unknown keys are an error.
// Every optional field has a default; LoadOrDefault runs entirely on
// defaults when no config file exists.
package config
