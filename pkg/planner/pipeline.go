package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/morrow/pkg/auth"
	"github.com/harrisonrobin/morrow/pkg/config"
	"github.com/harrisonrobin/morrow/pkg/errs"
	"github.com/harrisonrobin/morrow/pkg/llm"
)

// CredentialSource yields a valid credential, refreshing if needed.
type CredentialSource interface {
	EnsureValid(ctx context.Context) (*auth.Credential, error)
}

// APIFactory builds a Tasks client for an access token. Injected so the
// pipeline can run against a fake service in tests.
type APIFactory func(ctx context.Context, accessToken string) (TaskAPI, error)

// Orchestrator sequences the pipeline: credential, fetch, guard, prompt,
// completion, parse, write. Each stage runs once; a failure aborts every
// downstream stage, and the only mutating stage is the last.
type Orchestrator struct {
	cfg    *config.Config
	creds  CredentialSource
	newAPI APIFactory
	llm    llm.Client
	now    func() time.Time
}

func NewOrchestrator(cfg *config.Config, creds CredentialSource, newAPI APIFactory, client llm.Client) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		creds:  creds,
		newAPI: newAPI,
		llm:    client,
		now:    time.Now,
	}
}

// Run executes the pipeline once and returns its result. A schedule
// parse failure ends the run; there is no automatic re-prompt, since
// re-asking without the failure context rarely improves the output.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	cred, err := o.creds.EnsureValid(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	api, err := o.newAPI(ctx, cred.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	tasks, err := NewSource(api).Fetch(ctx, o.cfg.Google.SourceList)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input, err := BuildInput(tasks, o.cfg.Preferences, o.cfg.Timezone, o.now())
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString(), Date: input.Date}
	if len(tasks) == 0 {
		return result, nil
	}

	empty, outputListID, err := NewGuard(api).CheckEmpty(ctx, o.cfg.Google.OutputList)
	if err != nil {
		return nil, fmt.Errorf("check output list: %w", err)
	}
	if !empty {
		return nil, errs.Newf(errs.CodeOutputListNotEmpty,
			"output list %q is not empty, clear it before planning", o.cfg.Google.OutputList)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := o.llm.Complete(ctx, llm.Request{System: SystemPrompt, User: UserPrompt(input)})
	if err != nil {
		return nil, fmt.Errorf("generate schedule: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blocks, warnings, err := ParseSchedule(raw, tasks, o.cfg.Preferences)
	if err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	result.Blocks = blocks
	result.Warnings = warnings
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Once writing starts the run finishes even if ctx is canceled: a
	// half-written schedule is worse than a slow one.
	writer := NewWriter(api, outputListID, input.Date)
	written, err := writer.Write(context.WithoutCancel(ctx), blocks)
	result.WrittenCount = written
	if err != nil {
		return result, fmt.Errorf("write schedule: %w", err)
	}
	return result, nil
}
