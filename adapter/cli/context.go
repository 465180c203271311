package cli

import (
	"context"
)

func withCommandContext(ctx context.Context, info commandContext) context.Context {
	return context.WithValue(ctx, commandContextKey{}, info)
}

func commandContextFrom(ctx context.Context) (commandContext, bool) {
	if ctx == nil {
		return commandContext{}, false
	}
	info, ok := ctx.Value(commandContextKey{}).(commandContext)
	return info, ok
}
