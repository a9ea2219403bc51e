package notification

import (
	"fmt"
	"strings"
)

const summaryTitle = "New Updates"

// summarize builds the body of a batch summary: one line per category
// present, in summaryOrder.
func summarize(items []PendingNotification) string {
	counts := make(map[Category]int, len(summaryOrder))
	for _, n := range items {
		counts[n.Category]++
	}

	var lines []string
	for _, c := range summaryOrder {
		if n := counts[c]; n > 0 {
			lines = append(lines, summaryLine(c, n))
		}
	}
	return strings.Join(lines, "\n")
}

func summaryLine(c Category, n int) string {
	switch c {
	case CategoryAnnouncement:
		return fmt.Sprintf("%d new announcement%s", n, plural(n))
	case CategoryEvent:
		return fmt.Sprintf("%d event update%s", n, plural(n))
	case CategoryReminder:
		return fmt.Sprintf("%d event reminder%s", n, plural(n))
	case CategoryPrayerRequest:
		return fmt.Sprintf("%d new prayer request%s", n, plural(n))
	case CategoryBibleStudy:
		return fmt.Sprintf("%d Bible study update%s", n, plural(n))
	case CategoryMinistryTeam:
		return fmt.Sprintf("%d ministry team update%s", n, plural(n))
	case CategoryTeamEvent:
		return fmt.Sprintf("%d team event update%s", n, plural(n))
	}
	return ""
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
