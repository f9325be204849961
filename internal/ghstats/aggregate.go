package ghstats

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultSampleSize = 10

// Service computes yearly statistics snapshots. It holds no per-request
// state; every YearlyStats call works only on data fetched within that
// call, so a single Service serves concurrent requests.
type Service struct {
	client     *Client
	sampleSize int
	now        func() time.Time
	newRand    func() *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithSampleSize sets how many repositories the commit estimator samples.
func WithSampleSize(n int) Option {
	return func(s *Service) { s.sampleSize = n }
}

// WithClock overrides the clock used for streak and heuristic decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRandSource overrides the source feeding the hour-bucket histogram,
// so tests can pin the pseudo-random hour assignment.
func WithRandSource(newRand func() *rand.Rand) Option {
	return func(s *Service) { s.newRand = newRand }
}

// NewService returns a Service backed by the given client.
func NewService(client *Client, opts ...Option) *Service {
	s := &Service{
		client:     client,
		sampleSize: defaultSampleSize,
		now:        time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// YearlyStats aggregates a user's GitHub activity for one calendar year
// into a single snapshot.
//
// Only the profile and repository fetches can fail the call: a missing
// user surfaces as ErrNotFound, other REST failures as ErrUpstream or
// ErrNetwork. Every GraphQL-backed figure degrades to an estimate or a
// zero value instead of failing, so an unauthenticated or rate-limited
// run still produces a complete (if thinner) snapshot.
func (s *Service) YearlyStats(ctx context.Context, username string, year int) (*StatsSnapshot, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	var (
		profile Profile
		repos   []Repository
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.client.FetchProfile(gCtx, username)
		if err != nil {
			return fmt.Errorf("fetching profile: %w", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		r, err := s.client.FetchRepositories(gCtx, username)
		if err != nil {
			return fmt.Errorf("listing repos: %w", err)
		}
		repos = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// An account created after the requested year cannot have contributed
	// in it; short-circuit to the declared empty snapshot.
	if profile.CreatedAt.Year() > year {
		slog.Info("account newer than requested year, returning empty snapshot",
			"user", username, "year", year, "created", profile.CreatedAt.Year())
		return emptySnapshot(profile, year), nil
	}

	var (
		mu            sync.Mutex
		totalCommits  int
		days          []ContributionDay
		collaboration CollaborationStats
	)
	g2, gCtx2 := errgroup.WithContext(ctx)
	g2.Go(func() error {
		total := s.client.fetchContributionTotal(gCtx2, username, from, to)
		if total == 0 {
			total = s.client.estimateCommitsFromRepos(gCtx2, username, repos, from, to, s.sampleSize)
		}
		mu.Lock()
		totalCommits = total
		mu.Unlock()
		return nil
	})
	g2.Go(func() error {
		d := s.client.fetchCalendar(gCtx2, username, from, to)
		mu.Lock()
		days = d
		mu.Unlock()
		return nil
	})
	g2.Go(func() error {
		c := s.client.fetchCollaborationStats(gCtx2, username, from, to)
		mu.Lock()
		collaboration = c
		mu.Unlock()
		return nil
	})
	// Every goroutine absorbs its own failures; Wait cannot fail.
	_ = g2.Wait()

	languageStats, topLanguage := computeLanguageStats(repos)

	current := currentStreak(days, s.now())
	longest := longestStreak(days)
	if len(days) == 0 {
		// No calendar: fall back to the repo-metadata heuristic. The two
		// streak figures may come from different sources within one run,
		// so current <= longest is not guaranteed by construction.
		current, longest = repoStreakHeuristic(repos, s.now())
	}

	snapshot := &StatsSnapshot{
		Profile:               profile,
		Year:                  year,
		Repos:                 repos,
		TotalCommits:          totalCommits,
		LanguageStats:         languageStats,
		TopLanguage:           topLanguage,
		CurrentStreak:         current,
		LongestStreak:         longest,
		TotalStars:            sumStars(repos),
		TotalForks:            sumForks(repos),
		ContributionsThisYear: contributionsThisYear(totalCommits, len(repos)),
		ActiveDays:            countActiveDays(days),
		MostActiveMonth:       mostActiveMonth(days),
		ContributionDays:      days,
		Timing:                computeTimingStats(days, s.newRand()),
		Collaboration:         collaboration,
	}
	return snapshot, nil
}

// computeLanguageStats counts repositories per declared primary language.
// The top language is the highest count, first-seen on ties, "Unknown"
// when no repository declares a language.
func computeLanguageStats(repos []Repository) (LanguageStats, string) {
	stats := make(LanguageStats)
	var order []string
	for _, r := range repos {
		if r.Language == "" {
			continue
		}
		if _, seen := stats[r.Language]; !seen {
			order = append(order, r.Language)
		}
		stats[r.Language]++
	}

	top := "Unknown"
	best := 0
	for _, lang := range order {
		if stats[lang] > best {
			best = stats[lang]
			top = lang
		}
	}
	return stats, top
}

func sumStars(repos []Repository) int {
	n := 0
	for _, r := range repos {
		n += r.Stars
	}
	return n
}

func sumForks(repos []Repository) int {
	n := 0
	for _, r := range repos {
		n += r.Forks
	}
	return n
}

// contributionsThisYear is a declared approximation: no endpoint exposes
// the figure directly, so it is derived from the commit and repo counts.
func contributionsThisYear(totalCommits, repoCount int) int {
	if c := totalCommits * 5; c > repoCount*10 {
		return c
	}
	return repoCount * 10
}

// emptySnapshot is the all-default snapshot returned when the account
// did not exist in the requested year.
func emptySnapshot(profile Profile, year int) *StatsSnapshot {
	return &StatsSnapshot{
		Profile:         profile,
		Year:            year,
		Repos:           []Repository{},
		LanguageStats:   LanguageStats{},
		TopLanguage:     "Unknown",
		MostActiveMonth: time.January.String(),
		Timing: TimingStats{
			MostActiveWeekday: "Monday",
			PeakCodingHour:    14,
		},
	}
}
