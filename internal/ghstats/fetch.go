package ghstats

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/go-github/v68/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/sync/errgroup"
)

const (
	// repoPageSize caps the repository listing at the API's first page.
	// Accounts with more repositories see an incomplete set; broadening
	// this needs pagination and changes every downstream statistic.
	repoPageSize = 100
	// commitPageSize bounds the per-repo commit sample to one page.
	commitPageSize = 100
	// sampleConcurrency bounds the commit-sampling fan-out.
	sampleConcurrency = 5
)

// FetchProfile fetches the user profile. A 404 comes back as ErrNotFound,
// any other non-2xx as ErrUpstream; both are fatal to the wrap.
func (c *Client) FetchProfile(ctx context.Context, username string) (Profile, error) {
	user, _, err := c.rest.Users.Get(ctx, username)
	if err != nil {
		return Profile{}, classifyREST(err)
	}
	return Profile{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		AvatarURL:   user.GetAvatarURL(),
		Bio:         user.GetBio(),
		PublicRepos: user.GetPublicRepos(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
		CreatedAt:   user.GetCreatedAt().Time,
	}, nil
}

// FetchRepositories lists the user's repositories, most recently updated
// first, capped at the first page of 100. A 404 yields an empty slice:
// a user with zero or hidden repos is a valid subject.
func (c *Client) FetchRepositories(ctx context.Context, username string) ([]Repository, error) {
	opts := &github.RepositoryListByUserOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: repoPageSize},
	}
	ghRepos, _, err := c.rest.Repositories.ListByUser(ctx, username, opts)
	if err != nil {
		err = classifyREST(err)
		if errors.Is(err, ErrNotFound) {
			return []Repository{}, nil
		}
		return nil, err
	}

	repos := make([]Repository, 0, len(ghRepos))
	for _, r := range ghRepos {
		repos = append(repos, Repository{
			Name:        r.GetName(),
			Description: r.GetDescription(),
			Stars:       r.GetStargazersCount(),
			Forks:       r.GetForksCount(),
			Language:    r.GetLanguage(),
			UpdatedAt:   r.GetUpdatedAt().Time,
			URL:         r.GetHTMLURL(),
		})
	}
	return repos, nil
}

type calendarQuery struct {
	User struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions int
				Weeks              []struct {
					ContributionDays []struct {
						Date              githubv4.Date
						ContributionCount int
					}
				}
			}
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

type contributionTotalQuery struct {
	User struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions int
			}
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

type collaborationQuery struct {
	User struct {
		ContributionsCollection struct {
			TotalPullRequestContributions       int
			TotalIssueContributions             int
			TotalPullRequestReviewContributions int
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

func yearVariables(username string, from, to time.Time) map[string]any {
	return map[string]any{
		"login": githubv4.String(username),
		"from":  githubv4.DateTime{Time: from},
		"to":    githubv4.DateTime{Time: to},
	}
}

// fetchCalendar fetches the daily contribution calendar for the year
// bounds. It needs a token; without one, or on any GraphQL failure, it
// returns an empty calendar so callers fall back to the repo heuristic.
func (c *Client) fetchCalendar(ctx context.Context, username string, from, to time.Time) []ContributionDay {
	if !c.Authenticated() {
		slog.Warn("no github token, contribution calendar unavailable")
		return nil
	}

	var q calendarQuery
	if err := c.gql.Query(ctx, &q, yearVariables(username, from, to)); err != nil {
		slog.Warn("contribution calendar fetch failed", "user", username, "error", classifyGraphQL(err))
		return nil
	}

	var days []ContributionDay
	for _, week := range q.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			days = append(days, ContributionDay{
				Date:  day.Date.Time,
				Count: day.ContributionCount,
			})
		}
	}
	return days
}

// fetchContributionTotal fetches the authoritative contribution total for
// the year bounds. Returns 0 on missing token or any failure; 0 is the
// signal for the caller to estimate from sampled commits instead.
func (c *Client) fetchContributionTotal(ctx context.Context, username string, from, to time.Time) int {
	if !c.Authenticated() {
		slog.Warn("no github token, contribution total will be estimated")
		return 0
	}

	var q contributionTotalQuery
	if err := c.gql.Query(ctx, &q, yearVariables(username, from, to)); err != nil {
		slog.Warn("contribution total fetch failed", "user", username, "error", classifyGraphQL(err))
		return 0
	}
	return q.User.ContributionsCollection.ContributionCalendar.TotalContributions
}

// fetchCollaborationStats fetches PR/issue/review contribution totals.
// IssuesClosed is derived as 70% of issue contributions, rounded: the
// API exposes no per-year closed count, so a fixed ratio stands in.
// All-zero stats on missing token or any failure.
func (c *Client) fetchCollaborationStats(ctx context.Context, username string, from, to time.Time) CollaborationStats {
	if !c.Authenticated() {
		slog.Warn("no github token, collaboration stats unavailable")
		return CollaborationStats{}
	}

	var q collaborationQuery
	if err := c.gql.Query(ctx, &q, yearVariables(username, from, to)); err != nil {
		slog.Warn("collaboration stats fetch failed", "user", username, "error", classifyGraphQL(err))
		return CollaborationStats{}
	}

	coll := q.User.ContributionsCollection
	return CollaborationStats{
		TotalPRs:     coll.TotalPullRequestContributions,
		TotalIssues:  coll.TotalIssueContributions,
		IssuesClosed: int(math.Round(float64(coll.TotalIssueContributions) * 0.7)),
		ReviewsGiven: coll.TotalPullRequestReviewContributions,
	}
}

// estimateCommitsFromRepos approximates the user's commit count for the
// year by sampling the sampleSize most recently updated repositories,
// counting one page of commits in each, and scaling the sum up by the
// total repo count when not everything was sampled. Per-repo failures
// count as zero commits for that repo; the estimate is approximate
// either way and a partial sample is better than none.
func (c *Client) estimateCommitsFromRepos(ctx context.Context, username string, repos []Repository, from, to time.Time, sampleSize int) int {
	if len(repos) == 0 || sampleSize < 1 {
		return 0
	}

	sorted := make([]Repository, len(repos))
	copy(sorted, repos)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	sample := sorted
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	var mu sync.Mutex
	total := 0
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(sampleConcurrency)
	for _, repo := range sample {
		g.Go(func() error {
			opts := &github.CommitsListOptions{
				Author:      username,
				Since:       from,
				Until:       to,
				ListOptions: github.ListOptions{PerPage: commitPageSize},
			}
			commits, _, err := c.rest.Repositories.ListCommits(gCtx, username, repo.Name, opts)
			if err != nil {
				slog.Debug("skipping repo in commit sample", "repo", repo.Name, "error", err)
				return nil
			}
			mu.Lock()
			total += len(commits)
			mu.Unlock()
			return nil
		})
	}
	// The goroutines swallow their own failures, so Wait cannot fail.
	_ = g.Wait()

	if len(repos) > len(sample) {
		perRepo := float64(total) / float64(len(sample))
		total = int(math.Round(perRepo * float64(len(repos))))
	}
	return total
}
