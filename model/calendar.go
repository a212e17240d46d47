package model

// ContributionDay is one cell of the contribution heatmap. Level is
// derived from Count via fixed thresholds and is always in [0,4].
type ContributionDay struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// ContributionWeek holds up to seven consecutive days. Weeks at the
// boundaries of the one-year window may be partial.
type ContributionWeek struct {
	ContributionDays []ContributionDay `json:"contributionDays"`
}

// Calendar is the synthetic contribution calendar covering one year
// ending "today".
type Calendar struct {
	TotalContributions int                `json:"totalContributions"`
	Weeks              []ContributionWeek `json:"weeks"`
}
