package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gitlytics/gitlytics/config"
	"github.com/gitlytics/gitlytics/model"
	"github.com/google/go-github/v66/github"

	log "github.com/sirupsen/logrus"

	"golang.org/x/time/rate"
)

type GithubService interface {
	FetchUserProfile(ctx context.Context, username string) (*github.User, error)
	FetchUserRepositories(ctx context.Context, username string) ([]*github.Repository, error)
	FetchRepositoryLanguages(ctx context.Context, username string, repository string) (map[string]int, error)

	ClassifyRequestError(err error) *model.APIError
}

type githubService struct {
	githubClient      *github.Client
	githubRateLimiter *rate.Limiter
	config            config.Config
}

// the profile and repository list endpoints share the core rate limit
// 60 calls per hour for non-authenticated and 5000 calls for authenticated
// the token is applied to the client in main, this service only issues the calls
func NewGithubService(config config.Config, githubClient *github.Client, rateLimiter *rate.Limiter) GithubService {
	return githubService{
		githubClient:      githubClient,
		githubRateLimiter: rateLimiter,
		config:            config,
	}
}

// FetchUserProfile load the public profile for a single user
func (s githubService) FetchUserProfile(ctx context.Context, username string) (*github.User, error) {
	log.WithField("username", username).Debug("fetch user profile from github")

	user, _, err := s.githubClient.Users.Get(ctx, username)

	if err != nil {
		return nil, s.ClassifyRequestError(err)
	}

	return user, nil
}

// FetchUserRepositories load the repository list for a single user
// single page with a large page size, sorted by most recently updated
func (s githubService) FetchUserRepositories(ctx context.Context, username string) ([]*github.Repository, error) {
	log.WithField("username", username).Debug("fetch user repositories from github")

	repos, _, err := s.githubClient.Repositories.ListByUser(
		ctx,
		username,
		&github.RepositoryListByUserOptions{
			Sort: "updated",
			ListOptions: github.ListOptions{
				Page:    1,
				PerPage: 100,
			},
		},
	)

	if err != nil {
		return nil, s.ClassifyRequestError(err)
	}

	return repos, nil
}

// FetchRepositoryLanguages load the language byte counts for a single repository
func (s githubService) FetchRepositoryLanguages(ctx context.Context, username string, repository string) (map[string]int, error) {
	log.WithFields(log.Fields{
		"username":   username,
		"repository": repository,
	}).Debug("fetch languages for repository")

	languages, _, err := s.githubClient.Repositories.ListLanguages(ctx, username, repository)

	if err != nil {
		return nil, s.ClassifyRequestError(err)
	}

	return languages, nil
}

// ClassifyRequestError is the single point where raw github client errors are
// mapped to the typed error taxonomy
// If error is a rate limit error, this function will also update the local rate
// limiter to consume all available requests, to keep it in sync with github
func (s githubService) ClassifyRequestError(err error) *model.APIError {
	if rateLimitErr, ok := err.(*github.RateLimitError); ok {
		s.drainLocalRateLimiter()
		return rateLimitError(rateLimitErr.Rate.Reset.Time, time.Now())
	}

	if _, ok := err.(*github.AbuseRateLimitError); ok {
		s.drainLocalRateLimiter()
		return rateLimitError(time.Time{}, time.Now())
	}

	if errResponse, ok := err.(*github.ErrorResponse); ok && errResponse.Response != nil {
		switch {
		case errResponse.Response.StatusCode == http.StatusNotFound:
			return model.NewAPIError(model.ErrorKindNotFound, http.StatusNotFound, "GitHub user not found")

		case errResponse.Response.StatusCode == http.StatusForbidden &&
			errResponse.Response.Header.Get("X-RateLimit-Remaining") == "0":
			s.drainLocalRateLimiter()
			return rateLimitError(resetTimeFromHeader(errResponse.Response), time.Now())

		default:
			return model.NewAPIError(
				model.ErrorKindServerError,
				errResponse.Response.StatusCode,
				fmt.Sprintf("GitHub API error: %s", http.StatusText(errResponse.Response.StatusCode)),
			)
		}
	}

	log.WithError(err).Error("error catched when fetching data from github")
	return model.NewAPIError(model.ErrorKindNetworkError, http.StatusInternalServerError, "failed to connect to GitHub API")
}

func (s githubService) drainLocalRateLimiter() {
	if !s.githubRateLimiter.AllowN(time.Now(), s.githubRateLimiter.Burst()) {
		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
	}
}

// rateLimitError build the rate limit error with a human readable wait hint
// the hint is omitted when the reset time is unknown or already passed
func rateLimitError(reset time.Time, now time.Time) *model.APIError {
	apiErr := model.NewAPIError(
		model.ErrorKindRateLimit,
		http.StatusForbidden,
		"GitHub rate limit reached. Consider using a token to increase the limit",
	)

	if !reset.IsZero() {
		if minutes := int(math.Ceil(reset.Sub(now).Minutes())); minutes > 0 {
			apiErr.RetryHint = fmt.Sprintf("try again in %d minute(s)", minutes)
		}
	}

	return apiErr
}

func resetTimeFromHeader(resp *http.Response) time.Time {
	var epoch int64

	if _, err := fmt.Sscanf(resp.Header.Get("X-RateLimit-Reset"), "%d", &epoch); err != nil || epoch == 0 {
		return time.Time{}
	}

	return time.Unix(epoch, 0)
}
