package version

// Build information, overridden at link time:
//
//	go build -ldflags "-X github.com/arthur-debert/jiek/internal/version.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
