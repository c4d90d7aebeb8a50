// Package stage defines the contract between the pipeline manager and the
// individual processing stages.
package stage

import (
	"context"

	"kielo/internal/queue"
)

// Handler describes the contract the pipeline manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
}

// Definition binds a handler to its queue transitions and failure policy.
type Definition struct {
	Name       string
	Processing queue.Status
	Done       queue.Status
	Handler    Handler

	// Optional stages report failures and are skipped; the item continues.
	Optional bool
	// Always stages run even after the item has already failed.
	Always bool
}
