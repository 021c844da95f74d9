package commands

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

var dayDurationRegex = regexp.MustCompile(`^([0-9]+)([dw])$`)

// parseSince reads durations like "7d" and "2w" on top of everything
// time.ParseDuration accepts.
func parseSince(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	groups := dayDurationRegex.FindStringSubmatch(value)
	if groups == nil {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q, expected something like 7d, 2w or 36h", value)
		}
		if duration < 0 {
			return 0, fmt.Errorf("duration %q is negative", value)
		}
		return duration, nil
	}

	n, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, err
	}
	day := 24 * time.Hour
	if groups[2] == "w" {
		return time.Duration(n) * 7 * day, nil
	}
	return time.Duration(n) * day, nil
}

func joinList(list []string) string {
	if len(list) == 0 {
		return "-"
	}
	return strings.Join(list, ", ")
}
