package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gitlytics/gitlytics/model"
	"github.com/google/go-github/v66/github"
)

// score weights and divisors for the composite activity score
// each component is capped independently before summation
const (
	contributionScoreMax     = 40.0
	contributionScoreDivisor = 500.0
	starScoreMax             = 30.0
	starScoreDivisor         = 100.0
	recentActivityScoreMax   = 30.0
	recentActivityDivisor    = 10.0
)

const (
	topLanguagesLimit    = 10
	stalenessMonths      = 6
	activeRepoMonths     = 3
	contributionMonthDiv = 12.0
)

// TransformProfile maps the raw github user to the display profile,
// substituting empty strings for absent optional fields and the login
// for a missing display name
func TransformProfile(user *github.User, now time.Time) model.Profile {
	name := user.GetName()
	if name == "" {
		name = user.GetLogin()
	}

	return model.Profile{
		Username:        user.GetLogin(),
		Name:            name,
		AvatarURL:       user.GetAvatarURL(),
		Bio:             user.GetBio(),
		Followers:       user.GetFollowers(),
		Following:       user.GetFollowing(),
		PublicRepos:     user.GetPublicRepos(),
		AccountAge:      accountAge(user.GetCreatedAt().Time, now),
		Location:        user.GetLocation(),
		Company:         user.GetCompany(),
		Blog:            user.GetBlog(),
		TwitterUsername: user.GetTwitterUsername(),
		ProfileURL:      user.GetHTMLURL(),
		JoinDate:        formatDate(user.GetCreatedAt().Time),
	}
}

// accountAge renders a human readable age like "3y 4mo", "8mo" or "12d"
func accountAge(createdAt time.Time, now time.Time) string {
	days := int(math.Ceil(now.Sub(createdAt).Hours() / 24))
	years := days / 365
	months := (days % 365) / 30

	if years > 0 {
		if months > 0 {
			return fmt.Sprintf("%dy %dmo", years, months)
		}
		return fmt.Sprintf("%dy", years)
	}

	if months > 0 {
		return fmt.Sprintf("%dmo", months)
	}

	return fmt.Sprintf("%dd", days)
}

func formatDate(date time.Time) string {
	return date.Format("Jan 2, 2006")
}

// AggregateLanguageStats sums language bytes across non forked
// repositories and ranks them by share of the total. The result is empty
// when no bytes were collected at all, to guard the division.
// languagesData is keyed by repository qualified name.
func AggregateLanguageStats(repositories []*github.Repository, languagesData map[string]map[string]int) []model.LanguageStat {
	totals := make(map[string]int)

	for _, repo := range repositories {
		if repo.GetFork() {
			continue
		}

		for language, bytes := range languagesData[repo.GetFullName()] {
			totals[language] += bytes
		}
	}

	totalBytes := 0
	for _, bytes := range totals {
		totalBytes += bytes
	}

	if totalBytes == 0 {
		return []model.LanguageStat{}
	}

	// rank from an alphabetical base order so equal percentages get a
	// deterministic position regardless of map iteration
	order := make([]string, 0, len(totals))
	for language := range totals {
		order = append(order, language)
	}
	sort.Strings(order)

	stats := make([]model.LanguageStat, 0, len(totals))
	for _, language := range order {
		stats = append(stats, model.LanguageStat{
			Language:   language,
			Percentage: float64(totals[language]) / float64(totalBytes) * 100,
			Bytes:      totals[language],
			Color:      GetLanguageColor(language),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Percentage > stats[j].Percentage
	})

	if len(stats) > topLanguagesLimit {
		stats = stats[:topLanguagesLimit]
	}

	return stats
}

// TransformRepositories builds the repository table rows, excluding
// forks and sorting by star count descending. The sort is stable so
// equal star counts keep the source list order.
func TransformRepositories(repositories []*github.Repository, now time.Time) []model.RepositoryDisplay {
	sixMonthsAgo := now.AddDate(0, -stalenessMonths, 0)

	displays := make([]model.RepositoryDisplay, 0, len(repositories))

	for _, repo := range repositories {
		if repo.GetFork() {
			continue
		}

		description := repo.GetDescription()
		if description == "" {
			description = "No description provided"
		}

		language := repo.GetLanguage()
		if language == "" {
			language = "Unknown"
		}

		displays = append(displays, model.RepositoryDisplay{
			ID:            repo.GetID(),
			Name:          repo.GetName(),
			Description:   description,
			Stars:         repo.GetStargazersCount(),
			Forks:         repo.GetForksCount(),
			Language:      language,
			LanguageColor: GetLanguageColor(repo.GetLanguage()),
			UpdatedAt:     formatDate(repo.GetUpdatedAt().Time),
			IsStale:       repo.GetUpdatedAt().Time.Before(sixMonthsAgo),
			URL:           repo.GetHTMLURL(),
		})
	}

	sort.SliceStable(displays, func(i, j int) bool {
		return displays[i].Stars > displays[j].Stars
	})

	return displays
}

// CalculateActivityMetrics derives the composite score and its inputs.
// Stars and the active repository count deliberately include forks while
// the language and display aggregates exclude them.
func CalculateActivityMetrics(repositories []*github.Repository, contributions model.Calendar, now time.Time) model.ActivityMetrics {
	threeMonthsAgo := now.AddDate(0, -activeRepoMonths, 0)

	activeRepos := 0
	totalStars := 0

	for _, repo := range repositories {
		if repo.GetUpdatedAt().Time.After(threeMonthsAgo) {
			activeRepos++
		}
		totalStars += repo.GetStargazersCount()
	}

	averagePerMonth := float64(contributions.TotalContributions) / contributionMonthDiv

	level := model.ActivityLevelNone
	switch {
	case averagePerMonth > 50:
		level = model.ActivityLevelHigh
	case averagePerMonth > 20:
		level = model.ActivityLevelMedium
	case averagePerMonth > 5:
		level = model.ActivityLevelLow
	}

	contributionScore := math.Min(float64(contributions.TotalContributions)/contributionScoreDivisor*contributionScoreMax, contributionScoreMax)
	starScore := math.Min(float64(totalStars)/starScoreDivisor*starScoreMax, starScoreMax)
	recentActivityScore := math.Min(float64(activeRepos)/recentActivityDivisor*recentActivityScoreMax, recentActivityScoreMax)

	return model.ActivityMetrics{
		Score:                        int(math.Round(contributionScore + starScore + recentActivityScore)),
		TotalContributions:           contributions.TotalContributions,
		AverageContributionsPerMonth: int(math.Round(averagePerMonth)),
		MostActiveMonth:              mostActiveMonth(contributions),
		RecentActivityLevel:          level,
		TotalStars:                   totalStars,
		ActiveReposCount:             activeRepos,
	}
}

// mostActiveMonth finds the YYYY-MM bucket with the highest summed daily
// count, iterating chronologically so ties go to the earliest bucket
func mostActiveMonth(contributions model.Calendar) string {
	monthly := make(map[string]int)
	order := make([]string, 0)

	for _, week := range contributions.Weeks {
		for _, day := range week.ContributionDays {
			month := day.Date[:7]
			if _, seen := monthly[month]; !seen {
				order = append(order, month)
			}
			monthly[month] += day.Count
		}
	}

	if len(order) == 0 {
		return "N/A"
	}

	best := order[0]
	for _, month := range order[1:] {
		if monthly[month] > monthly[best] {
			best = month
		}
	}

	parsed, err := time.Parse("2006-01", best)
	if err != nil {
		return "N/A"
	}

	return parsed.Format("January 2006")
}

// BuildAnalytics assembles the final immutable view model. Every failure
// has already been resolved by the orchestrator before this point.
func BuildAnalytics(
	user *github.User,
	repositories []*github.Repository,
	languagesData map[string]map[string]int,
	contributions model.Calendar,
	now time.Time,
) *model.Analytics {
	return &model.Analytics{
		Profile:       TransformProfile(user, now),
		Languages:     AggregateLanguageStats(repositories, languagesData),
		Repositories:  TransformRepositories(repositories, now),
		Contributions: contributions,
		Activity:      CalculateActivityMetrics(repositories, contributions, now),
	}
}
