package testutil

// FixedSessionGenerator returns the same session id every time.
//
// The same scenario with the same FixedSessionGenerator produces
// byte-identical archive listings, which golden tests rely on.
//
// Unlike engine.FixedGenerator, which hands out ids in sequence and panics
// when exhausted, this generator never runs out.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a generator returning id.
// If id is empty, Generate() returns "test-session-default".
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session id.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
