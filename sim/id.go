package sim

import (
	"github.com/google/uuid"
)

// AgentID uniquely identifies an agent. IDs are random 128-bit values,
// immutable after creation and never reused.
type AgentID struct {
	uuid.UUID
}

// NewAgentID mints a fresh random agent identifier.
func NewAgentID() AgentID {
	return AgentID{uuid.New()}
}

// ParseAgentID parses the canonical string form of an agent identifier.
func ParseAgentID(s string) (AgentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return AgentID{}, err
	}
	return AgentID{u}, nil
}

// IsZero reports whether the identifier is the zero value.
func (id AgentID) IsZero() bool {
	return id.UUID == uuid.Nil
}

// SystemSource is the reserved identifier used as the provenance of
// information generated by the environment itself rather than by an agent.
// Fixed so that system-generated information is stable across ticks and runs.
var SystemSource = AgentID{uuid.MustParse("00000000-0000-4000-8000-000000000001")}

// AssetID uniquely identifies a physical or knowledge asset.
type AssetID struct {
	uuid.UUID
}

// NewAssetID mints a fresh random asset identifier.
func NewAssetID() AssetID {
	return AssetID{uuid.New()}
}

// ParseAssetID parses the canonical string form of an asset identifier.
func ParseAssetID(s string) (AssetID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return AssetID{}, err
	}
	return AssetID{u}, nil
}

// IsZero reports whether the identifier is the zero value.
func (id AssetID) IsZero() bool {
	return id.UUID == uuid.Nil
}

// ModelID uniquely identifies a model instance.
type ModelID struct {
	uuid.UUID
}

// NewModelID mints a fresh random model identifier.
func NewModelID() ModelID {
	return ModelID{uuid.New()}
}

// ParseModelID parses the canonical string form of a model identifier.
func ParseModelID(s string) (ModelID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ModelID{}, err
	}
	return ModelID{u}, nil
}

// IsZero reports whether the identifier is the zero value.
func (id ModelID) IsZero() bool {
	return id.UUID == uuid.Nil
}
