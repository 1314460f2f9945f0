// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle: load
// sheets into a formula map, apply command-line assignments, report every
// variable and optionally serve the map over HTTP. It is decoupled from any
// specific entrypoint like a CLI.
package app
