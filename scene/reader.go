package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// The scene path used when the CLI is not given one.
const DefaultScenePath = "scenes/example.json"

// Returned (wrapped) when a scene file cannot be parsed or fails shape
// validation.
var ErrMalformedScene = errors.New("scene: malformed scene")

// Read and validate a scene description from a JSON file.
func Read(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", path, err)
	}
	defer f.Close()

	world, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return world, nil
}

// Decode and validate a scene description from a reader.
func Decode(r io.Reader) (*World, error) {
	var world World
	dec := json.NewDecoder(r)
	if err := dec.Decode(&world); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedScene, err)
	}
	if err := world.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedScene, err)
	}
	return &world, nil
}
