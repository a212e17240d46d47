package service

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gitlytics/gitlytics/config"
	"github.com/gitlytics/gitlytics/model"
	"github.com/google/go-github/v66/github"

	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"

	"golang.org/x/time/rate"
)

// fixed constants of the design, not runtime configuration
const (
	repoAnalysisLimit      = 10
	languageFetchTimeout   = 5 * time.Second
	languageOverallTimeout = 20 * time.Second
)

var usernamePattern = regexp.MustCompile(`[^a-zA-Z0-9-]`)

type AnalyticsService interface {
	Aggregate(ctx context.Context, username string) (*model.Analytics, error)
}

type analyticsService struct {
	githubService     GithubService
	githubRateLimiter *rate.Limiter
	config            config.Config
	now               func() time.Time
}

func NewAnalyticsService(config config.Config, githubService GithubService, rateLimiter *rate.Limiter) AnalyticsService {
	return analyticsService{
		githubService:     githubService,
		githubRateLimiter: rateLimiter,
		config:            config,
		now:               time.Now,
	}
}

// Aggregate runs the whole pipeline for one username: validate, fetch
// profile and repositories, fan out language fetches, generate the
// synthetic calendar and build the view model.
// Only profile and repository list errors are fatal, everything
// downstream degrades gracefully.
func (s analyticsService) Aggregate(ctx context.Context, username string) (analytics *model.Analytics, err error) {

	// an unexpected fault must never escape to the caller as a panic
	defer func() {
		if recovered := recover(); recovered != nil {
			log.WithField("panic", recovered).Error("unexpected fault during aggregation")
			analytics = nil
			err = model.NewAPIError(model.ErrorKindUnknown, http.StatusInternalServerError, "an unexpected error occurred")
		}
	}()

	trimmed := strings.TrimSpace(username)

	if trimmed == "" {
		return nil, model.NewAPIError(model.ErrorKindNotFound, http.StatusBadRequest, "please enter a GitHub username")
	}

	// the sanitized value is never silently substituted for the lookup,
	// any difference is a rejection before a single network call
	if usernamePattern.ReplaceAllString(trimmed, "") != trimmed {
		return nil, model.NewAPIError(model.ErrorKindNotFound, http.StatusBadRequest, "username contains invalid characters")
	}

	// one token for the profile call and one for the repository list
	if !s.githubRateLimiter.AllowN(time.Now(), 2) {
		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return nil, model.NewAPIError(model.ErrorKindRateLimit, http.StatusForbidden, "GitHub rate limit reached. Consider using a token to increase the limit")
	}

	log.WithField("username", trimmed).Info("aggregate analytics for user")

	user, err := s.githubService.FetchUserProfile(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	repositories, err := s.githubService.FetchUserRepositories(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	languagesData := s.fetchLanguages(ctx, trimmed, selectRepositoriesToAnalyze(repositories))

	now := s.now()
	calendar := GenerateContributionCalendar(repositories, now)

	return BuildAnalytics(user, repositories, languagesData, calendar, now), nil
}

// selectRepositoriesToAnalyze filters out forks and keeps the first
// repositories in the list order, a conservative cap to respect the
// anonymous rate limit
func selectRepositoriesToAnalyze(repositories []*github.Repository) []*github.Repository {
	selected := make([]*github.Repository, 0, repoAnalysisLimit)

	for _, repo := range repositories {
		if repo.GetFork() {
			continue
		}

		selected = append(selected, repo)

		if len(selected) == repoAnalysisLimit {
			break
		}
	}

	return selected
}

// fetchLanguages fans out one language call per selected repository with
// a short timeout each and an overall timeout on the join. Individual
// failures and timeouts are absorbed, the affected repository simply
// contributes no language data.
func (s analyticsService) fetchLanguages(ctx context.Context, username string, repositories []*github.Repository) map[string]map[string]int {
	languagesData := make(map[string]map[string]int)

	if len(repositories) == 0 {
		return languagesData
	}

	// consume one token per planned call, if the local budget is too low
	// degrade to an empty language map rather than failing the pipeline
	if !s.githubRateLimiter.AllowN(time.Now(), len(repositories)) {
		log.WithField("repositoriesToLoad", len(repositories)).Warning("not enough requests in rate limiter to load languages, skipping language data")
		return languagesData
	}

	swg := sizedwaitgroup.New(s.config.Tasks.MaxParallelTasksAllowed)

	// buffered to the fan-out size so late goroutines never block on send
	// after the overall timeout stopped the collection
	results := make(chan model.RepositoryLanguages, len(repositories))

	for _, repo := range repositories {
		swg.Add()

		go func(repo *github.Repository) {
			defer swg.Done()

			callCtx, cancel := context.WithTimeout(ctx, languageFetchTimeout)
			defer cancel()

			languages, err := s.githubService.FetchRepositoryLanguages(callCtx, username, repo.GetName())

			if err != nil {
				log.WithFields(log.Fields{
					"repository": repo.GetFullName(),
				}).WithError(err).Debug("language fetch skipped")
				return
			}

			results <- model.RepositoryLanguages{FullName: repo.GetFullName(), Languages: languages}
		}(repo)
	}

	done := make(chan struct{})

	go func() {
		swg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Debug("all language fetches finished")
	case <-time.After(languageOverallTimeout):
		log.Warning("language fan-out deadline reached, proceeding with partial data")
	}

	// collect whatever landed, never wait for stragglers
collect:
	for {
		select {
		case result := <-results:
			languagesData[result.FullName] = result.Languages
		default:
			break collect
		}
	}

	return languagesData
}
