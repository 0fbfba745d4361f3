package ports

import "context"

// SelectionTransformer rewrites a selected piece of text, for example by
// handing it to an assistant.
type SelectionTransformer interface {
	Transform(ctx context.Context, text string) (string, error)
}
