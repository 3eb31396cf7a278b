package testutil

// FixedTraceGenerator generates the same trace id every time.
//
// This enables golden snapshot comparison of documents that carry a
// trace_id. Thread-safety: stateless and safe for concurrent use.
type FixedTraceGenerator struct {
	id string
}

// NewFixedTraceGenerator creates a fixed trace id generator.
// If id is empty, Generate() returns "test-trace-default".
func NewFixedTraceGenerator(id string) *FixedTraceGenerator {
	if id == "" {
		id = "test-trace-default"
	}
	return &FixedTraceGenerator{id: id}
}

// Generate returns the fixed trace id.
//
// Implements engine.TraceGenerator.
func (g *FixedTraceGenerator) Generate() string {
	return g.id
}
