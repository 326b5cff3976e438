package config

// Version is the pathfinder binary version.
// Set at build time via: -ldflags "-X github.com/persistorai/pathfinder/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
