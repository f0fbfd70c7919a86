package version

import (
	"fmt"
	"runtime"

	goversion "github.com/hashicorp/go-version"
)

var (
	// Version is the version of the CLI
	Version = "0.1.0"
	// BuildDate is the build date
	BuildDate = "unknown"
	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Info holds version information
type Info struct {
	Version   string
	BuildDate string
	GitCommit string
	GoVersion string
	Platform  string
}

// Get returns version information
func Get() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("pgql version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// Rows returns the version details as table rows.
func (i Info) Rows() [][]string {
	return [][]string{
		{"Version", i.Version},
		{"Build Date", i.BuildDate},
		{"Git Commit", i.GitCommit},
		{"Platform", i.Platform},
		{"Go Version", i.GoVersion},
	}
}

// Older reports whether the running version is older than other. Versions
// that do not parse, such as "dev", are never older.
func (i Info) Older(other string) (bool, error) {
	current, err := goversion.NewVersion(i.Version)
	if err != nil {
		return false, nil
	}
	want, err := goversion.NewVersion(other)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", other, err)
	}
	return current.LessThan(want), nil
}
