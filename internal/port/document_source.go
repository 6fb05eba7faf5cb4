package port

import "context"

// DocumentSource enumerates and reads the documents of a comparison run.
type DocumentSource interface {
	// List returns document identifiers in a stable, deterministic order.
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, documentID string) ([]byte, error)
}
