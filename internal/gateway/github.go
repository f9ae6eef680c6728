// Package gateway provides gateways to the external systems the benchmark drives:
// the repair tool, git working copies, CSV tables and the GitHub API.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/repair-bench/internal/domain"
)

// Resolver defines the behavior of a gateway that normalizes benchmark input before dispatch.
type Resolver interface {
	Resolve(ctx context.Context, commits []domain.Commit) ([]domain.Commit, error)
}

// GitHubResolver expands commit refs to full SHAs and repository URLs to their canonical form.
type GitHubResolver struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// repositoryURLQuery fetches the canonical URL of a repository, following renames.
type repositoryURLQuery struct {
	Repository struct {
		URL githubv4.URI
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type repoRef struct {
	owner, name string
}

// NewGitHubResolver is a constructor that creates a new instance of GitHubResolver.
func NewGitHubResolver(token string, logger *log.Logger) (*GitHubResolver, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubResolver{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// Resolve returns a copy of commits where every github.com entry carries the canonical
// repository URL and the full commit SHA. Other hosts are passed through unchanged.
func (g *GitHubResolver) Resolve(ctx context.Context, commits []domain.Commit) ([]domain.Commit, error) {
	g.logger.Println("Resolving commits against the GitHub API...")
	canonicalURLs := make(map[repoRef]string)
	shas := make(map[domain.CommitKey]string)

	resolved := make([]domain.Commit, 0, len(commits))
	for _, commit := range commits {
		ref, ok := parseGitHubURL(commit.URL)
		if !ok {
			resolved = append(resolved, commit)
			continue
		}

		key := commit.Key()
		sha, ok := shas[key]
		if !ok {
			var err error
			sha, _, err = g.restClient.Repositories.GetCommitSHA1(ctx, ref.owner, ref.name, commit.SHA, "")
			if err != nil {
				return nil, fmt.Errorf("failed to resolve commit %s: %w", key, err)
			}
			shas[key] = sha
		}

		canonical, ok := canonicalURLs[ref]
		if !ok {
			var err error
			canonical, err = g.canonicalURL(ctx, ref)
			if err != nil {
				return nil, err
			}
			canonicalURLs[ref] = canonical
		}

		commit.URL = canonical
		commit.SHA = sha
		resolved = append(resolved, commit)
	}
	g.logger.Printf("Resolved %d commits across %d GitHub repositories.", len(resolved), len(canonicalURLs))
	return resolved, nil
}

func (g *GitHubResolver) canonicalURL(ctx context.Context, ref repoRef) (string, error) {
	var q repositoryURLQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(ref.owner),
		"name":  githubv4.String(ref.name),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return "", fmt.Errorf("failed to execute GraphQL query for %s/%s: %w", ref.owner, ref.name, err)
	}
	if q.Repository.URL.URL == nil {
		return "", fmt.Errorf("repository %s/%s has no URL", ref.owner, ref.name)
	}
	return q.Repository.URL.String(), nil
}

// parseGitHubURL extracts owner and name from https://github.com/owner/name(.git) URLs.
func parseGitHubURL(raw string) (repoRef, bool) {
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Host, "github.com") {
		return repoRef{}, false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return repoRef{}, false
	}
	return repoRef{owner: parts[0], name: strings.TrimSuffix(parts[1], ".git")}, true
}
