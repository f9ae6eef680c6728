package gateway

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long we wait for the tool's output pipes after it was killed.
const waitDelay = 10 * time.Second

// RepairRequest describes a single repair invocation of the external tool.
type RepairRequest struct {
	Source          string
	StatsOutputFile string
	RuleKey         string
}

// RepairTool defines the behavior of the external program-repair tool.
type RepairTool interface {
	// Repair runs the tool on req.Source restricted to req.RuleKey.
	// Any non-nil error means the tool did not complete.
	Repair(ctx context.Context, req RepairRequest) error
	// RuleKeys lists every rule the tool knows how to repair.
	RuleKeys(ctx context.Context) ([]string, error)
}

// ToolGateway is the concrete implementation of RepairTool that runs the tool as a subprocess.
type ToolGateway struct {
	command   []string
	rulesArgs []string
	logger    *log.Logger
}

// NewToolGateway creates a ToolGateway. command is the tool's command line, e.g. "java -jar sorald.jar".
func NewToolGateway(command string, rulesArgs []string, logger *log.Logger) (*ToolGateway, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("repair tool command is empty")
	}
	return &ToolGateway{
		command:   fields,
		rulesArgs: rulesArgs,
		logger:    logger,
	}, nil
}

func (g *ToolGateway) Repair(ctx context.Context, req RepairRequest) error {
	args := []string{
		"repair",
		"--source", req.Source,
		"--stats-output-file", req.StatsOutputFile,
		"--rule-key", req.RuleKey,
	}
	g.logger.Printf("Running repair tool for rule %s on %s", req.RuleKey, req.Source)
	if _, err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to repair %s with rule %s: %w", req.Source, req.RuleKey, err)
	}
	return nil
}

func (g *ToolGateway) RuleKeys(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, g.rulesArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule keys: %w", err)
	}
	var keys []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if key := strings.TrimSpace(scanner.Text()); key != "" {
			keys = append(keys, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rule keys: %w", err)
	}
	return keys, nil
}

func (g *ToolGateway) run(ctx context.Context, args ...string) ([]byte, error) {
	argv := append(append([]string{}, g.command[1:]...), args...)
	cmd := exec.CommandContext(ctx, g.command[0], argv...)
	cmd.WaitDelay = waitDelay
	inProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, fmt.Errorf("%w: %s", err, lastLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
