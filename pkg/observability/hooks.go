// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumentation is optional: the composite engine and the document codec
// call hooks registered here, and the defaults do nothing. Consumers register
// their own implementations at startup to forward events to a metrics or
// tracing backend of their choice.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Engine().OnOperationStart(ctx, "expand", len(targets))
//	// ... expand composites ...
//	observability.Engine().OnOperationComplete(ctx, "expand", changed, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from composite operations.
type EngineHooks interface {
	// OnOperationStart fires before an operation touches the graph.
	// vertices is the number of vertices the operation was asked to act on.
	OnOperationStart(ctx context.Context, op string, vertices int)

	// OnOperationComplete fires once per operation, including no-ops.
	OnOperationComplete(ctx context.Context, op string, changed int, duration time.Duration, err error)

	// OnSnapshotSkipped fires when a composite is left untouched because its
	// stored snapshot failed validation.
	OnSnapshotSkipped(ctx context.Context, vertex int, err error)
}

// =============================================================================
// Document Hooks
// =============================================================================

// DocumentHooks receives events from graph document import and export.
type DocumentHooks interface {
	// OnDocumentRead records a decoded document.
	OnDocumentRead(ctx context.Context, vertices, transactions int, duration time.Duration, err error)

	// OnDocumentWritten records an encoded document.
	OnDocumentWritten(ctx context.Context, vertices, transactions int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnOperationStart(context.Context, string, int) {}
func (NoopEngineHooks) OnOperationComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopEngineHooks) OnSnapshotSkipped(context.Context, int, error) {}

// NoopDocumentHooks is a no-op implementation of DocumentHooks.
type NoopDocumentHooks struct{}

func (NoopDocumentHooks) OnDocumentRead(context.Context, int, int, time.Duration, error)    {}
func (NoopDocumentHooks) OnDocumentWritten(context.Context, int, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks   EngineHooks   = NoopEngineHooks{}
	documentHooks DocumentHooks = NoopDocumentHooks{}
	hooksMu       sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any composite operations.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetDocumentHooks registers custom document hooks.
func SetDocumentHooks(h DocumentHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		documentHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Document returns the registered document hooks.
func Document() DocumentHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return documentHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	documentHooks = NoopDocumentHooks{}
}
