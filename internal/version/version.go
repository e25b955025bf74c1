// Package version carries the build version, set at link time:
//
//	go build -ldflags "-X github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/version.Version=1.2.0"
package version

// Version is the application version.
var Version = "0.1.0-dev"
