package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/cso-health-insurance/server/internal/agent/composer"
	"github.com/cso-health-insurance/server/internal/agent/decision"
	"github.com/cso-health-insurance/server/internal/agent/graph/nodes"
	"github.com/cso-health-insurance/server/internal/agent/graph/observers"
	"github.com/cso-health-insurance/server/internal/agent/model"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

// maxRunSteps bounds one turn. The longest path has six nodes.
const maxRunSteps = 10

// Runner executes one turn through the compiled graph.
type Runner interface {
	Invoke(ctx context.Context, in model.TurnInput) (*model.TurnResult, error)
}

// Config holds everything needed to build the turn graph.
type Config struct {
	Lookups     nodes.Lookups
	Synthesizer *decision.Synthesizer
	Composer    *composer.Composer
	TopicLimit  int
}

// GraphBuilder handles the construction of the turn graph.
type GraphBuilder struct {
	config *Config
	graph  *compose.Graph[model.TurnInput, *model.TurnResult]
}

type graphRunner struct {
	runnable compose.Runnable[model.TurnInput, *model.TurnResult]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.TurnInput) (*model.TurnResult, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("graph returned no result")
	}
	return out, nil
}

// BuildGraph constructs and compiles the turn graph:
//
//	supervisor -> requirements -> {rs | nasabah | polis | decision} -> decision -> compose
func BuildGraph(ctx context.Context, config *Config) (Runner, error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.Lookups == nil {
		return nil, fmt.Errorf("lookups are nil")
	}
	if config.Synthesizer == nil {
		config.Synthesizer = decision.NewSynthesizer()
	}
	if config.Composer == nil {
		config.Composer = composer.New(nil)
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.TurnInput, *model.TurnResult](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}
	logx.Debug().Msg("Turn graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// addNodes adds all processing nodes; each one marks its visit in AppState.
func (b *GraphBuilder) addNodes() error {
	steps := []struct {
		key    string
		lambda *compose.Lambda
		opt    compose.GraphAddNodeOpt
	}{
		{nodes.NodeSupervisor, nodes.NewSupervisorNode(),
			compose.WithStatePreHandler(nodes.NewSupervisorPreHandler())},
		{nodes.NodeRequirements, nodes.NewRequirementsNode(),
			compose.WithStatePreHandler(nodes.NewVisitPreHandler[*model.TurnState](nodes.NodeRequirements))},
		{nodes.NodeRS, nodes.NewRSNode(b.config.Lookups),
			compose.WithStatePreHandler(nodes.NewVisitPreHandler[*model.TurnState](nodes.NodeRS))},
		{nodes.NodeNasabah, nodes.NewNasabahNode(b.config.Lookups),
			compose.WithStatePreHandler(nodes.NewVisitPreHandler[*model.TurnState](nodes.NodeNasabah))},
		{nodes.NodePolis, nodes.NewPolisNode(b.config.Lookups),
			compose.WithStatePreHandler(nodes.NewVisitPreHandler[*model.TurnState](nodes.NodePolis))},
		{nodes.NodeDecision, nodes.NewDecisionNode(b.config.Synthesizer, b.config.TopicLimit),
			compose.WithStatePreHandler(nodes.NewVisitPreHandler[*model.TurnState](nodes.NodeDecision))},
		{nodes.NodeCompose, nodes.NewComposeNode(b.config.Composer),
			compose.WithStatePreHandler(nodes.NewVisitPreHandler[*model.TurnState](nodes.NodeCompose))},
	}

	for _, s := range steps {
		if err := b.graph.AddLambdaNode(s.key, s.lambda, s.opt, compose.WithNodeName(s.key)); err != nil {
			logx.Error().Err(err).Str("node", s.key).Msg("Error adding node")
			return fmt.Errorf("error adding node %s: %w", s.key, err)
		}
	}
	return nil
}

// addEdges creates the fixed connections; the requirements fan-out is a branch.
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeSupervisor},
		{nodes.NodeSupervisor, nodes.NodeRequirements},
		{nodes.NodeRS, nodes.NodeDecision},
		{nodes.NodeNasabah, nodes.NodeDecision},
		{nodes.NodePolis, nodes.NodeDecision},
		{nodes.NodeDecision, nodes.NodeCompose},
		{nodes.NodeCompose, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches routes after requirements by (intent, missing fields).
func (b *GraphBuilder) addBranches() error {
	routeBranch := compose.NewGraphBranch(
		nodes.NewRequirementsCondition(),
		map[string]bool{
			nodes.NodeRS:       true,
			nodes.NodeNasabah:  true,
			nodes.NodePolis:    true,
			nodes.NodeDecision: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeRequirements, routeBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding route branch")
		return fmt.Errorf("error adding route branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.TurnInput, *model.TurnResult], error) {
	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName("cso_turn"),
		compose.WithMaxRunSteps(maxRunSteps),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
