package engine

import "context"

// StaticEngine returns a fixed verdict for every input. It exists for
// tests and for running the service without a live decision engine
// (smoke deployments, local development).
type StaticEngine struct {
	// Verdict is returned for every Process call. The returned pointer
	// refers to a shallow copy so callers cannot mutate the template.
	Verdict Verdict

	// Err when non-nil is returned instead of the verdict.
	Err error
}

// Name identifies the stub.
func (s *StaticEngine) Name() string {
	return "static"
}

// Process returns the configured verdict or error.
func (s *StaticEngine) Process(ctx context.Context, text string) (*Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewEngineError(s.Name(), err)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	v := s.Verdict
	return &v, nil
}
