package cli

// Version is stamped at build time via -ldflags.
var Version = "development"
