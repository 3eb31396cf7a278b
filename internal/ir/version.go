package ir

// Version constants for documents and the engine.
const (
	// DocumentVersion is the tool document schema version.
	DocumentVersion = "1"

	// EngineVersion is the shiptrace engine version.
	EngineVersion = "0.1.0"
)
