package composite

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/compositor/pkg/errors"
	"github.com/matzehuels/compositor/pkg/observability"
)

// SingleMemberPolicy decides what recontraction does with a group that has
// exactly one surviving member.
type SingleMemberPolicy int

const (
	// SingleMemberKeep collapses the survivor into a composite of size 1.
	SingleMemberKeep SingleMemberPolicy = iota
	// SingleMemberRelease clears the survivor's marker and leaves it as a
	// plain vertex.
	SingleMemberRelease
)

var policyNames = map[SingleMemberPolicy]string{
	SingleMemberKeep:    "keep",
	SingleMemberRelease: "release",
}

// String returns "keep" or "release".
func (p SingleMemberPolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("SingleMemberPolicy(%d)", int(p))
}

// ParseSingleMemberPolicy is the inverse of [SingleMemberPolicy.String].
func ParseSingleMemberPolicy(s string) (SingleMemberPolicy, error) {
	for p, name := range policyNames {
		if strings.EqualFold(name, s) {
			return p, nil
		}
	}
	return 0, errs.New(errs.ErrCodeInvalidConfig, "unknown single member policy %q (want keep or release)", s)
}

// Options configures an [Engine].
type Options struct {
	SingleMember SingleMemberPolicy
	// Logger receives warnings about skipped composites and debug traces.
	// Nil discards output.
	Logger *log.Logger
}

// Engine performs composite operations on a graph. An Engine holds no graph
// state and may be reused across graphs.
type Engine struct {
	opts   Options
	logger *log.Logger
}

// New returns an engine with the given options.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{opts: opts, logger: logger}
}

// Result summarizes a batch operation.
type Result struct {
	// Changed is the number of composites or groups that were rewritten.
	Changed int
	// Created lists the vertices added to the graph.
	Created []int
	// Removed lists the vertices deleted from the graph. Ids may reappear in
	// Created because the graph recycles them.
	Removed []int
	// Skipped lists the vertices left untouched because their snapshot failed
	// validation.
	Skipped []int
}

func (r *Result) merge(created, removed []int) {
	r.Changed++
	r.Created = append(r.Created, created...)
	r.Removed = append(r.Removed, removed...)
}

// trace reports an operation to the registered hooks and returns a function
// that reports its completion.
func trace(ctx context.Context, op string, vertices int) func(changed int, err error) {
	start := time.Now()
	hooks := observability.Engine()
	hooks.OnOperationStart(ctx, op, vertices)
	return func(changed int, err error) {
		hooks.OnOperationComplete(ctx, op, changed, time.Since(start), err)
	}
}

// skip records a composite whose snapshot could not be used.
func (e *Engine) skip(ctx context.Context, r *Result, err *errs.SnapshotError) {
	e.logger.Warn("skipping composite", "vertex", err.Vertex, "reason", err.Reason)
	observability.Engine().OnSnapshotSkipped(ctx, err.Vertex, err)
	r.Skipped = append(r.Skipped, err.Vertex)
}

// interrupted wraps a context error in the INTERRUPTED code.
func interrupted(ctx context.Context, op string) error {
	return errs.Wrap(errs.ErrCodeInterrupted, ctx.Err(), "%s interrupted", op)
}

func internal(err error, op string) error {
	return errs.Wrap(errs.ErrCodeInternal, err, "%s", op)
}
