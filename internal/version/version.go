package version

import (
	"fmt"
	"time"
)

// Заполняются через -ldflags "-X .../internal/version.BuildDate=...".
var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
	BuildBranch string
	BuildCI     string
)

// epoch - день, с которого считается номер сборки.
var epoch = time.Date(2025, time.December, 4, 0, 0, 0, 0, time.UTC)

// BuildInfo - метаданные сборки для /version и лога старта.
type BuildInfo struct {
	BuildID   int    `json:"buildId"`
	BuildDate string `json:"buildDate,omitempty"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	CI        string `json:"ci"`
	Error     string `json:"error,omitempty"`
}

// BuildNumber - число дней от epoch до даты сборки.
func BuildNumber(date string) (int, error) {
	if date == "" {
		return 0, fmt.Errorf("build date is empty")
	}
	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid build date %q: %w", date, err)
	}
	if t.Before(epoch) {
		return 0, fmt.Errorf("build date %s is before %s", date, epoch.Format("2006-01-02"))
	}
	return int(t.Sub(epoch).Hours() / 24), nil
}

func Info() BuildInfo {
	info := BuildInfo{
		BuildDate: BuildDate,
		Commit:    coalesce(BuildCommit, "unknown"),
		Branch:    coalesce(BuildBranch, "unknown"),
		CI:        coalesce(BuildCI, "local"),
	}
	id, err := BuildNumber(BuildDate)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.BuildID = id
	return info
}

func String() string {
	info := Info()
	if info.Error != "" {
		return fmt.Sprintf("godfield-flash dev build (%s)", info.Error)
	}
	return fmt.Sprintf("godfield-flash build %d (%s) commit[%s] branch[%s] ci[%s]",
		info.BuildID, info.BuildDate, info.Commit, info.Branch, info.CI)
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
