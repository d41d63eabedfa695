// Package version provides build-time version information for guardctl and
// the gateway guard layer.
//
// # Version Variables
//
// These variables are set at build time using ldflags:
//
//	var (
//	    Version  = "0.0.0"     // Semantic version from git tags
//	    Branch   = "unknown"   // Git branch name
//	    Revision = "unknown"   // Git commit hash (short)
//	    BuiltAt  = "unknown"   // Build timestamp
//	)
//
// # Build Integration
//
// Set version information during build with ldflags:
//
//	go build -ldflags "\
//	  -X github.com/andysheldon-creator/OpenClaw-Optimised-sub007/version.Version=1.2.3 \
//	  -X github.com/andysheldon-creator/OpenClaw-Optimised-sub007/version.Revision=abc123"
//
// # Display Formats
//
//	// String format
//	str := version.GetVersionInfo().String()
//
//	// JSON format
//	json, err := version.GetVersionInfo().JSON()
package version
