package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/cso-health-insurance/server/internal/agent/graph/observers"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

// ToolRunner executes single lookup tool calls through an eino ToolsNode. It backs the
// operator lookup console and never takes part in a dialogue turn.
type ToolRunner struct {
	runnable compose.Runnable[*schema.Message, []*schema.Message]
	names    []string
}

// BuildToolRunner compiles a one-node chain around the given tools.
func BuildToolRunner(ctx context.Context, tools []tool.BaseTool) (*ToolRunner, error) {
	if len(tools) == 0 {
		return nil, fmt.Errorf("no tools to run")
	}
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("error reading tool info: %w", err)
		}
		names = append(names, info.Name)
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{Tools: tools})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating tools node")
		return nil, fmt.Errorf("error creating tools node: %w", err)
	}

	chain := compose.NewChain[*schema.Message, []*schema.Message]()
	chain.AppendToolsNode(toolsNode, compose.WithNodeName("lookup_tools"))
	runnable, err := chain.Compile(ctx, compose.WithGraphName("lookup_console"))
	if err != nil {
		return nil, fmt.Errorf("error compiling tool chain: %w", err)
	}
	return &ToolRunner{runnable: runnable, names: names}, nil
}

// Names lists the callable tools in registration order.
func (r *ToolRunner) Names() []string {
	return append([]string(nil), r.names...)
}

// Call runs tool name with JSON arguments and returns its JSON result.
func (r *ToolRunner) Call(ctx context.Context, name, argumentsJSON string) (string, error) {
	msg := schema.AssistantMessage("", []schema.ToolCall{{
		ID:   uuid.NewString(),
		Type: "function",
		Function: schema.FunctionCall{
			Name:      name,
			Arguments: argumentsJSON,
		},
	}})

	out, err := r.runnable.Invoke(ctx, msg, compose.WithCallbacks(observers.NewToolCallbacks()))
	if err != nil {
		return "", err
	}
	if len(out) == 0 || out[0] == nil {
		return "", fmt.Errorf("tool %s returned nothing", name)
	}
	return out[0].Content, nil
}
