package model

// Profile is the display-ready account profile. Optional upstream fields
// are mapped to empty strings, never nil.
type Profile struct {
	Username        string `json:"username"`
	Name            string `json:"name"`
	AvatarURL       string `json:"avatarUrl"`
	Bio             string `json:"bio"`
	Followers       int    `json:"followers"`
	Following       int    `json:"following"`
	PublicRepos     int    `json:"publicRepos"`
	AccountAge      string `json:"accountAge"`
	Location        string `json:"location"`
	Company         string `json:"company"`
	Blog            string `json:"blog"`
	TwitterUsername string `json:"twitterUsername"`
	ProfileURL      string `json:"profileUrl"`
	JoinDate        string `json:"joinDate"`
}

// LanguageStat is one entry of the ranked language breakdown.
type LanguageStat struct {
	Language   string  `json:"language"`
	Percentage float64 `json:"percentage"`
	Bytes      int     `json:"bytes"`
	Color      string  `json:"color"`
}

// RepositoryDisplay is one row of the repository table, sorted by stars.
type RepositoryDisplay struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Stars         int    `json:"stars"`
	Forks         int    `json:"forks"`
	Language      string `json:"language"`
	LanguageColor string `json:"languageColor"`
	UpdatedAt     string `json:"updatedAt"`
	IsStale       bool   `json:"isStale"`
	URL           string `json:"url"`
}

type ActivityLevel string

const (
	ActivityLevelHigh   ActivityLevel = "high"
	ActivityLevelMedium ActivityLevel = "medium"
	ActivityLevelLow    ActivityLevel = "low"
	ActivityLevelNone   ActivityLevel = "none"
)

// ActivityMetrics holds the composite score and its inputs. Note that
// star and active-repository totals include forks while the language and
// repository aggregates exclude them.
type ActivityMetrics struct {
	Score                        int           `json:"score"`
	TotalContributions           int           `json:"totalContributions"`
	AverageContributionsPerMonth int           `json:"averageContributionsPerMonth"`
	MostActiveMonth              string        `json:"mostActiveMonth"`
	RecentActivityLevel          ActivityLevel `json:"recentActivityLevel"`
	TotalStars                   int           `json:"totalStars"`
	ActiveReposCount             int           `json:"activeReposCount"`
}

// Analytics is the final view-model, constructed exactly once per
// successful aggregation and read-only afterward.
type Analytics struct {
	Profile       Profile             `json:"profile"`
	Languages     []LanguageStat      `json:"languages"`
	Repositories  []RepositoryDisplay `json:"repositories"`
	Contributions Calendar            `json:"contributions"`
	Activity      ActivityMetrics     `json:"activity"`
}
