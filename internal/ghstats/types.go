package ghstats

import (
	"sort"
	"time"
)

// Profile holds the subset of a GitHub user profile the wrap cares about.
type Profile struct {
	Login       string    `json:"login"`
	Name        string    `json:"name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayName returns the profile name, falling back to the login.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Login
}

// Repository holds repository metadata. The slice order is whatever the
// API returned; consumers re-sort as they need.
type Repository struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Language    string    `json:"language,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	URL         string    `json:"url"`
}

// ContributionDay is one day of the contribution calendar.
type ContributionDay struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// LanguageStats maps a language name to the number of repositories that
// declare it as their primary language. Repository counts, not lines.
type LanguageStats map[string]int

// LanguageCount is a single entry of the sorted language view.
type LanguageCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TimingStats describes when the contributions happened. The hour signal
// is approximate: the calendar API has no commit-time data, so each day's
// count is spread into a pseudo-random hour bucket.
type TimingStats struct {
	MostActiveWeekday  string  `json:"most_active_weekday"`
	PeakCodingHour     int     `json:"peak_coding_hour"`
	WeekendTotal       int     `json:"weekend_contributions"`
	WeekdayTotal       int     `json:"weekday_contributions"`
	HourlyDistribution [24]int `json:"hourly_distribution"`
}

// CollaborationStats holds PR, issue, and review contribution totals.
// IssuesClosed is a fixed-ratio estimate, not an upstream figure.
type CollaborationStats struct {
	TotalPRs     int `json:"total_prs"`
	TotalIssues  int `json:"total_issues"`
	IssuesClosed int `json:"issues_closed"`
	ReviewsGiven int `json:"reviews_given"`
}

// StatsSnapshot is the fully aggregated result of one wrap computation
// for a (username, year) pair. It is assembled once and never mutated.
type StatsSnapshot struct {
	Profile               Profile            `json:"profile"`
	Year                  int                `json:"year"`
	Repos                 []Repository       `json:"repos"`
	TotalCommits          int                `json:"total_commits"`
	LanguageStats         LanguageStats      `json:"language_stats"`
	TopLanguage           string             `json:"top_language"`
	CurrentStreak         int                `json:"current_streak"`
	LongestStreak         int                `json:"longest_streak"`
	TotalStars            int                `json:"total_stars"`
	TotalForks            int                `json:"total_forks"`
	ContributionsThisYear int                `json:"contributions_this_year"`
	ActiveDays            int                `json:"active_days"`
	MostActiveMonth       string             `json:"most_active_month"`
	ContributionDays      []ContributionDay  `json:"contribution_days"`
	Timing                TimingStats        `json:"timing"`
	Collaboration         CollaborationStats `json:"collaboration"`
}

// TopRepos returns up to n repositories ordered by stars descending.
func (s *StatsSnapshot) TopRepos(n int) []Repository {
	sorted := make([]Repository, len(s.Repos))
	copy(sorted, s.Repos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Stars > sorted[j].Stars
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TopLanguages returns up to n languages ordered by repository count
// descending, name ascending on equal counts so the view is stable.
func (s *StatsSnapshot) TopLanguages(n int) []LanguageCount {
	langs := make([]LanguageCount, 0, len(s.LanguageStats))
	for name, count := range s.LanguageStats {
		langs = append(langs, LanguageCount{Name: name, Count: count})
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i].Count != langs[j].Count {
			return langs[i].Count > langs[j].Count
		}
		return langs[i].Name < langs[j].Name
	})
	if len(langs) > n {
		langs = langs[:n]
	}
	return langs
}
