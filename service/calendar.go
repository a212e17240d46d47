package service

import (
	"time"

	"github.com/gitlytics/gitlytics/model"
	"github.com/google/go-github/v66/github"
)

// GenerateContributionCalendar approximates a contribution calendar from
// repository push timestamps, since true contribution data requires the
// GraphQL API. Each repository counts +1 on the day of its last push
// inside the one year window ending at now. Deterministic given the
// repository list and now, so tests inject a fixed instant.
func GenerateContributionCalendar(repositories []*github.Repository, now time.Time) model.Calendar {
	// the window opens at midnight of the year-back date, so a push early
	// on the window-start day still lands inside
	start := now.AddDate(-1, 0, 0)
	oneYearAgo := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	// initialize every date of the window with 0 contributions
	contributions := make(map[string]int)

	for date := oneYearAgo; !date.After(now); date = date.AddDate(0, 0, 1) {
		contributions[date.Format("2006-01-02")] = 0
	}

	for _, repo := range repositories {
		if repo.PushedAt == nil {
			continue
		}

		pushed := repo.PushedAt.Time
		if pushed.Before(oneYearAgo) || pushed.After(now) {
			continue
		}

		contributions[pushed.Format("2006-01-02")]++
	}

	// partition the date series into week rows, a new week starts after
	// each Saturday and at the end of the range regardless of day
	calendar := model.Calendar{Weeks: make([]model.ContributionWeek, 0)}
	currentWeek := model.ContributionWeek{ContributionDays: make([]model.ContributionDay, 0, 7)}

	for date := oneYearAgo; !date.After(now); date = date.AddDate(0, 0, 1) {
		dateStr := date.Format("2006-01-02")
		count := contributions[dateStr]
		calendar.TotalContributions += count

		currentWeek.ContributionDays = append(currentWeek.ContributionDays, model.ContributionDay{
			Date:  dateStr,
			Count: count,
			Level: contributionLevel(count),
		})

		lastDay := date.AddDate(0, 0, 1).After(now)

		if date.Weekday() == time.Saturday || lastDay {
			calendar.Weeks = append(calendar.Weeks, currentWeek)
			currentWeek = model.ContributionWeek{ContributionDays: make([]model.ContributionDay, 0, 7)}
		}
	}

	return calendar
}

// contributionLevel maps a daily count to a heatmap intensity in [0,4]
func contributionLevel(count int) int {
	switch {
	case count >= 6:
		return 4
	case count >= 4:
		return 3
	case count >= 2:
		return 2
	case count >= 1:
		return 1
	default:
		return 0
	}
}
