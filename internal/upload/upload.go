// Package upload carries UploadDescriptor dispatch (spec.md §3). Upload is
// explicitly out of the compilation core (spec.md §1: "third-party
// upload/authentication flows" are external collaborators); this package
// only defines a dispatch seam for sending a rendered output to its upload
// targets, plus a stub implementation that logs and no-ops. The
// Orchestrator does not call it.
package upload

import (
	"context"
	"fmt"

	"github.com/videocraft/compiler/internal/pkg/logger"
	"github.com/videocraft/compiler/internal/project"
)

// Result reports what happened to one dispatched upload.
type Result struct {
	Name       string
	OutputName string
	Status     string
}

// Dispatcher sends a rendered output to its upload target.
type Dispatcher interface {
	Dispatch(ctx context.Context, d project.UploadDescriptor, renderedPath string) (Result, error)
}

// StubDispatcher logs every dispatch and reports it as skipped, standing in
// for the youtube/s3/instagram auth flows spec.md §1 scopes out of the
// core.
type StubDispatcher struct {
	log logger.Logger
}

// NewStubDispatcher creates a Dispatcher that performs no network I/O.
func NewStubDispatcher(log logger.Logger) *StubDispatcher {
	return &StubDispatcher{log: log}
}

func (s *StubDispatcher) Dispatch(_ context.Context, d project.UploadDescriptor, renderedPath string) (Result, error) {
	s.log.WithFields(map[string]interface{}{
		"upload": d.Name, "kind": string(d.Kind), "output": d.OutputName, "rendered_path": renderedPath,
	}).Info(fmt.Sprintf("skipping %s upload dispatch: provider not wired in this build", d.Kind))

	return Result{Name: d.Name, OutputName: d.OutputName, Status: "skipped"}, nil
}

// DispatchAll runs every upload descriptor targeting outputName through the
// dispatcher, in declaration order.
func DispatchAll(ctx context.Context, dispatcher Dispatcher, uploads []project.UploadDescriptor, outputName, renderedPath string) ([]Result, error) {
	var results []Result
	for _, d := range uploads {
		if d.OutputName != outputName {
			continue
		}
		r, err := dispatcher.Dispatch(ctx, d, renderedPath)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}
