package match

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output describes one addressable hardware output channel, as exported
// by the hardware-inventory collaborator. Read-only input: the matcher
// never creates or mutates descriptors.
type Output struct {
	ChannelNumber int    `json:"channelNumber"`
	Label         string `json:"label"`
}

// rosterFile matches the inventory service's config export, which wraps
// the descriptor list in an "outputs" field.
type rosterFile struct {
	Outputs []Output `json:"outputs"`
}

// LoadRoster reads an output roster from a JSON file. Both a bare array
// of descriptors and the inventory export shape {"outputs": [...]} are
// accepted.
func LoadRoster(path string) ([]Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var outputs []Output
	if err := json.Unmarshal(data, &outputs); err == nil {
		return outputs, nil
	}

	var wrapped rosterFile
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	return wrapped.Outputs, nil
}
