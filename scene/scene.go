// Package scene loads body and joint layouts from YAML and keeps a world in
// step with them across reloads.
package scene

import (
	"errors"
	"fmt"

	"github.com/milk9111/jointsync/joint"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScene = errors.New("scene: invalid")

// Scene is a list of named entity specs.
type Scene struct {
	Name     string       `yaml:"name"`
	Entities []EntitySpec `yaml:"entities"`
}

type EntitySpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

type TransformSpec struct {
	Position []float64    `yaml:"position"`
	Rotation RotationSpec `yaml:"rotation"`
}

// RotationSpec is an axis and an angle in radians. The axis defaults to +Z.
type RotationSpec struct {
	Axis  []float64 `yaml:"axis"`
	Angle float64   `yaml:"angle"`
}

type RigidBodySpec struct {
	Type       string  `yaml:"type"`
	Mass       float64 `yaml:"mass"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
}

type ColliderSpec struct {
	Radius float64 `yaml:"radius"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Depth  float64 `yaml:"depth"`
}

// JointSpec names its bodies by entity name. With Snap set the second
// body's parameters come from the bodies' current transforms and only
// Point1/Axis1 are read.
type JointSpec struct {
	Body1  string         `yaml:"body1"`
	Body2  string         `yaml:"body2"`
	Kind   string         `yaml:"kind"`
	Snap   bool           `yaml:"snap"`
	Point1 []float64      `yaml:"point1"`
	Axis1  []float64      `yaml:"axis1"`
	Point2 []float64      `yaml:"point2"`
	Axis2  []float64      `yaml:"axis2"`
	Frame1 *TransformSpec `yaml:"frame1"`
	Frame2 *TransformSpec `yaml:"frame2"`
}

// Load reads and parses a scene file.
func Load(name string) (*Scene, error) {
	data, err := Read(name)
	if err != nil {
		return nil, fmt.Errorf("scene: load %s: %w", name, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", name, err)
	}
	return sc, nil
}

func Parse(data []byte) (*Scene, error) {
	var sc Scene
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks names are unique and every component is known.
func (sc *Scene) Validate() error {
	seen := make(map[string]struct{}, len(sc.Entities))
	for i, es := range sc.Entities {
		if es.Name == "" {
			return fmt.Errorf("%w: entity %d has no name", ErrInvalidScene, i)
		}
		if _, ok := seen[es.Name]; ok {
			return fmt.Errorf("%w: duplicate entity %q", ErrInvalidScene, es.Name)
		}
		seen[es.Name] = struct{}{}
		if len(es.Components) == 0 {
			return fmt.Errorf("%w: entity %q does not define components", ErrInvalidScene, es.Name)
		}
		for name := range es.Components {
			if _, ok := componentRegistry[name]; !ok {
				return fmt.Errorf("%w: entity %q: no builder for component %q", ErrInvalidScene, es.Name, name)
			}
		}
	}

	for _, es := range sc.Entities {
		raw, ok := es.Components["joint"]
		if !ok {
			continue
		}
		js, err := DecodeComponentSpec[JointSpec](raw)
		if err != nil {
			return fmt.Errorf("%w: entity %q: decode joint spec: %v", ErrInvalidScene, es.Name, err)
		}
		for _, body := range []string{js.Body1, js.Body2} {
			if _, ok := seen[body]; !ok {
				return fmt.Errorf("%w: entity %q: joint body %q not in scene", ErrInvalidScene, es.Name, body)
			}
		}
		if _, err := joint.ParseKind(js.Kind); err != nil {
			return fmt.Errorf("%w: entity %q: %v", ErrInvalidScene, es.Name, err)
		}
	}
	return nil
}

// DecodeComponentSpec re-decodes a loosely typed component block into T.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
