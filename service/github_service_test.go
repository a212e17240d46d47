package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gitlytics/gitlytics/config"
	"github.com/gitlytics/gitlytics/model"
	"github.com/google/go-github/v66/github"
	githubMock "github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestGithubService(githubClient *github.Client) GithubService {
	conf := config.GetDefault()
	limiter := rate.NewLimiter(rate.Every(time.Hour), 60)
	return NewGithubService(*conf, githubClient, limiter)
}

func errorResponseWithStatus(status int, header http.Header) *github.ErrorResponse {
	if header == nil {
		header = make(http.Header)
	}

	return &github.ErrorResponse{
		Response: &http.Response{
			StatusCode: status,
			Header:     header,
		},
	}
}

// TestClassifyRequestError checks the authoritative error taxonomy at
// its single classification point
func TestClassifyRequestError(t *testing.T) {
	rateLimitHeader := make(http.Header)
	rateLimitHeader.Set("X-RateLimit-Remaining", "0")
	rateLimitHeader.Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(10*time.Minute).Unix()))

	expiredHeader := make(http.Header)
	expiredHeader.Set("X-RateLimit-Remaining", "0")
	expiredHeader.Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(-time.Minute).Unix()))

	tests := []struct {
		name            string
		err             error
		expectedKind    model.ErrorKind
		expectedStatus  int
		expectRetryHint bool
	}{
		{
			name:           "HTTP 404 maps to not_found",
			err:            errorResponseWithStatus(http.StatusNotFound, nil),
			expectedKind:   model.ErrorKindNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:            "HTTP 403 with zero remaining maps to rate_limit with a wait hint",
			err:             errorResponseWithStatus(http.StatusForbidden, rateLimitHeader),
			expectedKind:    model.ErrorKindRateLimit,
			expectedStatus:  http.StatusForbidden,
			expectRetryHint: true,
		},
		{
			name:           "HTTP 403 with an already passed reset omits the hint",
			err:            errorResponseWithStatus(http.StatusForbidden, expiredHeader),
			expectedKind:   model.ErrorKindRateLimit,
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "Typed rate limit error maps to rate_limit",
			err: &github.RateLimitError{
				Rate: github.Rate{Reset: github.Timestamp{Time: time.Now().Add(30 * time.Minute)}},
			},
			expectedKind:    model.ErrorKindRateLimit,
			expectedStatus:  http.StatusForbidden,
			expectRetryHint: true,
		},
		{
			name:           "Any other non-2xx maps to server_error with the status",
			err:            errorResponseWithStatus(http.StatusBadGateway, nil),
			expectedKind:   model.ErrorKindServerError,
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "Transport failure maps to network_error",
			err:            errors.New("dial tcp: connection refused"),
			expectedKind:   model.ErrorKindNetworkError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	svc := newTestGithubService(github.NewClient(nil))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := svc.ClassifyRequestError(tt.err)

			assert.Equal(t, tt.expectedKind, apiErr.Kind)
			assert.Equal(t, tt.expectedStatus, apiErr.Status)

			if tt.expectRetryHint {
				assert.Contains(t, apiErr.RetryHint, "try again in")
			} else {
				assert.Empty(t, apiErr.RetryHint)
			}
		})
	}
}

// TestFetchUserProfile checks the profile call against a mocked client
func TestFetchUserProfile(t *testing.T) {
	mockedHTTPClient := githubMock.NewMockedHTTPClient(
		githubMock.WithRequestMatchHandler(
			githubMock.GetUsersByUsername,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, err := w.Write(githubMock.MustMarshal(github.User{
					Login: github.String("octocat"),
					Name:  github.String("The Octocat"),
				}))

				if err != nil {
					t.Error("unable to configure mock http client")
				}
			}),
		),
	)

	svc := newTestGithubService(github.NewClient(mockedHTTPClient))
	user, err := svc.FetchUserProfile(context.Background(), "octocat")

	require.NoError(t, err)
	assert.Equal(t, "octocat", user.GetLogin())
	assert.Equal(t, "The Octocat", user.GetName())
}

// TestFetchRepositoryLanguages checks the language call and the typed
// error on failure
func TestFetchRepositoryLanguages(t *testing.T) {
	tests := []struct {
		name          string
		mockStatus    int
		mockLanguages map[string]int
		expectedKind  model.ErrorKind
	}{
		{
			name:          "Fetch languages successfully",
			mockStatus:    http.StatusOK,
			mockLanguages: map[string]int{"Go": 10000, "Python": 5000},
		},
		{
			name:         "Missing repository yields a typed not_found",
			mockStatus:   http.StatusNotFound,
			expectedKind: model.ErrorKindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockedHTTPClient := githubMock.NewMockedHTTPClient(
				githubMock.WithRequestMatchHandler(
					githubMock.GetReposLanguagesByOwnerByRepo,
					http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
						if tt.mockStatus != http.StatusOK {
							githubMock.WriteError(w, tt.mockStatus, "Not Found")
							return
						}

						_, _ = w.Write(githubMock.MustMarshal(tt.mockLanguages))
					}),
				),
			)

			svc := newTestGithubService(github.NewClient(mockedHTTPClient))
			languages, err := svc.FetchRepositoryLanguages(context.Background(), "octocat", "hello-go")

			if tt.expectedKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedKind, model.AsAPIError(err).Kind)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.mockLanguages, languages)
		})
	}
}
