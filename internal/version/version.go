package version

import (
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v1.0.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2026-08-30T18:42:00Z
	GoVersion = runtime.Version()               // go version
)
