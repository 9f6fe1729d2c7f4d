// Package config loads planguard.yaml, the file that selects the policy
// store backend, the global and per-provider evaluation defaults and the
// plan schema.
//
// Load applies defaults, overlays secrets from the environment and
// validates the result. FindConfigFile locates the file by walking up from
// the working directory.
package config
