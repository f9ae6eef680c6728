package usecase

import (
	"bytes"
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/naka-gawa/repair-bench/internal/domain"
	"github.com/naka-gawa/repair-bench/internal/gateway"
)

// mockTool is a mock implementation of the gateway.RepairTool interface.
type mockTool struct {
	mock.Mock
}

func (m *mockTool) Repair(ctx context.Context, req gateway.RepairRequest) error {
	args := m.Called(ctx, req)
	if fn, ok := args.Get(0).(func(context.Context, gateway.RepairRequest) error); ok {
		return fn(ctx, req)
	}
	return args.Error(0)
}

func (m *mockTool) RuleKeys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// mockGit is a mock implementation of the gateway.Git interface.
type mockGit struct {
	mock.Mock
}

func (m *mockGit) Clone(ctx context.Context, url, dir string) error {
	return m.Called(ctx, url, dir).Error(0)
}

func (m *mockGit) Checkout(ctx context.Context, dir, rev string) error {
	return m.Called(ctx, dir, rev).Error(0)
}

func (m *mockGit) Restore(ctx context.Context, dir, rev string) error {
	return m.Called(ctx, dir, rev).Error(0)
}

func (m *mockGit) HeadCommit(ctx context.Context, dir string) (string, error) {
	args := m.Called(ctx, dir)
	return args.String(0), args.Error(1)
}

func (m *mockGit) RemoteURL(ctx context.Context, dir string) (string, error) {
	args := m.Called(ctx, dir)
	return args.String(0), args.Error(1)
}

// mockInvoker is a mock implementation of the RuleInvoker interface.
type mockInvoker struct {
	mock.Mock
}

func (m *mockInvoker) Invoke(ctx context.Context, commitID, sourceTree, statsFile, ruleKey string) (domain.RepairStats, error) {
	args := m.Called(ctx, commitID, sourceTree, statsFile, ruleKey)
	return args.Get(0).(domain.RepairStats), args.Error(1)
}

// mockProcessor is a mock implementation of the CommitProcessor interface.
type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) Process(ctx context.Context, commit domain.Commit, ruleKeys []string) (domain.CommitRepairStats, error) {
	args := m.Called(ctx, commit, ruleKeys)
	return args.Get(0).(domain.CommitRepairStats), args.Error(1)
}

// safeBuffer is a bytes.Buffer that can be written from several goroutines.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
