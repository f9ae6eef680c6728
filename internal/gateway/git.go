package gateway

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// Git defines the working-copy operations needed to benchmark a commit.
type Git interface {
	Clone(ctx context.Context, url, dir string) error
	Checkout(ctx context.Context, dir, rev string) error
	// Restore force-checks out rev and removes every untracked and ignored file.
	Restore(ctx context.Context, dir, rev string) error
	HeadCommit(ctx context.Context, dir string) (string, error)
	RemoteURL(ctx context.Context, dir string) (string, error)
}

// GitCLI implements Git by running the git binary.
type GitCLI struct {
	logger *log.Logger
}

// NewGitCLI creates a new GitCLI.
func NewGitCLI(logger *log.Logger) *GitCLI {
	return &GitCLI{logger: logger}
}

func (g *GitCLI) Clone(ctx context.Context, url, dir string) error {
	g.logger.Printf("Cloning %s into %s", url, dir)
	_, err := g.run(ctx, "", "clone", "--quiet", url, dir)
	return err
}

func (g *GitCLI) Checkout(ctx context.Context, dir, rev string) error {
	_, err := g.run(ctx, dir, "-c", "advice.detachedHead=false", "checkout", "--quiet", rev)
	return err
}

func (g *GitCLI) Restore(ctx context.Context, dir, rev string) error {
	if _, err := g.run(ctx, dir, "-c", "advice.detachedHead=false", "checkout", "--quiet", "--force", rev); err != nil {
		return err
	}
	_, err := g.run(ctx, dir, "clean", "-q", "-xfd")
	return err
}

func (g *GitCLI) HeadCommit(ctx context.Context, dir string) (string, error) {
	return g.run(ctx, dir, "rev-parse", "HEAD")
}

func (g *GitCLI) RemoteURL(ctx context.Context, dir string) (string, error) {
	return g.run(ctx, dir, "remote", "get-url", "origin")
}

func (g *GitCLI) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}
