// Package runtime wraps domain agents in the contract discipline every
// pipeline handoff must honor: validate the input, process it, score the
// output against the nine principles, inject the scored assessment into the
// outgoing contract, and hold the output to its own quality gates. Agents
// implement business logic; the runtime makes it impossible for a
// non-compliant contract to leave them.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jhonnyo88/devteam-sub001/internal/dna"
	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// Agent is one pipeline role's business logic.
type Agent interface {
	// AgentType identifies the pipeline role this agent fills.
	AgentType() contract.AgentType

	// ProcessContract turns an input contract into the next handoff.
	// Returning a nil contract with a nil error ends the pipeline for the
	// story (the project manager closing out a reviewed feature does this).
	ProcessContract(ctx context.Context, in *contract.Contract) (*contract.Contract, error)

	// CheckQualityGate evaluates one named gate against the output contract.
	CheckQualityGate(gate string, out *contract.Contract) (bool, error)
}

// GateReporter is optionally implemented by agents that can enumerate the
// gates they understand. Gates outside the list are logged and passed rather
// than failing a handoff on a gate the agent cannot judge.
type GateReporter interface {
	KnownQualityGates() []string
}

// Runtime executes one agent under the contract discipline. It implements
// the scheduler's Runner interface.
type Runtime struct {
	agent  Agent
	engine *dna.Engine
	logger *zap.Logger
}

// New wraps an agent. A nil compliance config uses the defaults; a nil
// logger uses zap.NewNop.
func New(agent Agent, cfg *dna.Config, logger *zap.Logger) (*Runtime, error) {
	if agent == nil {
		return nil, fmt.Errorf("agent cannot be nil")
	}
	if err := agent.AgentType().Validate(); err != nil {
		return nil, fmt.Errorf("agent has invalid type: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{
		agent:  agent,
		engine: dna.NewEngine(agent.AgentType(), cfg, logger),
		logger: logger,
	}, nil
}

// Run processes one handoff end to end. The returned contract carries the
// agent's scored compliance assessment; a nil contract ends the pipeline.
func (r *Runtime) Run(ctx context.Context, in *contract.Contract) (*contract.Contract, error) {
	agentType := r.agent.AgentType()

	if result := contract.Validate(in); !result.OK {
		return nil, &BusinessLogicError{
			Agent: string(agentType),
			Msg:   fmt.Sprintf("rejected input contract: %s", strings.Join(result.Errors, "; ")),
		}
	}
	if in.TargetAgent != agentType {
		return nil, &BusinessLogicError{
			Agent: string(agentType),
			Msg:   fmt.Sprintf("received contract addressed to %s", in.TargetAgent),
		}
	}

	out, err := r.agent.ProcessContract(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s failed to process %s: %w", agentType, in.StoryID, err)
	}
	if out == nil {
		r.logger.Info("pipeline ended",
			zap.String("agent", string(agentType)),
			zap.String("story_id", in.StoryID))
		return nil, nil
	}

	result, err := r.engine.Evaluate(in, out)
	if err != nil {
		return nil, &BusinessLogicError{
			Agent: string(agentType),
			Msg:   fmt.Sprintf("compliance evaluation failed: %v", err),
		}
	}
	if err := r.engine.Validate(result); err != nil {
		return nil, err
	}

	assessment, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize compliance assessment: %w", err)
	}
	out = out.WithAgentValidation(agentType, assessment)

	if err := r.checkGates(out); err != nil {
		return nil, err
	}

	if result := contract.Validate(out); !result.OK {
		return nil, &BusinessLogicError{
			Agent: string(agentType),
			Msg:   fmt.Sprintf("produced invalid output contract: %s", strings.Join(result.Errors, "; ")),
		}
	}

	return out, nil
}

// checkGates runs the output contract's quality gates in declaration order.
// The first failing gate rejects the handoff; gates the agent does not know
// are logged and passed.
func (r *Runtime) checkGates(out *contract.Contract) error {
	known := map[string]bool{}
	reporter, limited := r.agent.(GateReporter)
	if limited {
		for _, gate := range reporter.KnownQualityGates() {
			known[gate] = true
		}
	}

	for _, gate := range out.QualityGates {
		if limited && !known[gate] {
			r.logger.Warn("skipping unknown quality gate",
				zap.String("agent", string(r.agent.AgentType())),
				zap.String("gate", gate))
			continue
		}

		passed, err := r.agent.CheckQualityGate(gate, out)
		if err != nil {
			return fmt.Errorf("quality gate %q errored: %w", gate, err)
		}
		if !passed {
			return &QualityGateError{Agent: string(r.agent.AgentType()), Gate: gate}
		}
	}
	return nil
}
