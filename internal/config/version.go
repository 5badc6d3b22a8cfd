package config

// Version is the collegedir binary version.
// Set at build time via: -ldflags "-X github.com/collegedir/collegedir/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
