package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/embedding"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/cso-health-insurance/server/pkg/logger"
)

func newEmbeddingHandler() *callbackHelper.EmbeddingCallbackHandler {
	return &callbackHelper.EmbeddingCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *embedding.CallbackInput) context.Context {
			if input != nil {
				logx.Debug().Str("name", runName(info)).Int("texts", len(input.Texts)).Msg("embedding start")
			}
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *embedding.CallbackOutput) context.Context {
			if output != nil {
				logx.Debug().Str("name", runName(info)).Int("vectors", len(output.Embeddings)).Msg("embedding end")
			}
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Warn().Err(err).Str("name", runName(info)).Msg("embedding failed")
			return ctx
		},
	}
}
