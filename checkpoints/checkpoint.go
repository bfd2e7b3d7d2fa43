package checkpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrShapeMismatch is wrapped by every weight-shape validation failure so
// callers can distinguish architecture mismatches from I/O problems.
var ErrShapeMismatch = errors.New("weight shape mismatch")

// CheckpointFormat defines the serialization format
type CheckpointFormat int

const (
	FormatJSON CheckpointFormat = iota
	FormatONNX
)

func (cf CheckpointFormat) String() string {
	switch cf {
	case FormatJSON:
		return "JSON"
	case FormatONNX:
		return "ONNX"
	default:
		return "Unknown"
	}
}

// Checkpoint represents a serialized parameter blob: the named weight
// tensors of a trained network plus provenance metadata. Checkpoints are
// read-only after loading; the surrogate never writes training state back.
type Checkpoint struct {
	Weights  []WeightTensor     `json:"weights"`
	Metadata CheckpointMetadata `json:"metadata"`
}

// WeightTensor represents a model parameter tensor with its data
type WeightTensor struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
	Layer string    `json:"layer,omitempty"`
	Type  string    `json:"type,omitempty"` // "weight" or "bias"
}

// Elements is the number of values the declared shape implies.
func (wt WeightTensor) Elements() int {
	if len(wt.Shape) == 0 {
		return 0
	}
	elements := 1
	for _, dim := range wt.Shape {
		elements *= dim
	}
	return elements
}

// CheckpointMetadata contains checkpoint metadata
type CheckpointMetadata struct {
	Version     string    `json:"version"`
	Framework   string    `json:"framework"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// TensorByName looks up a weight tensor by its serialized name.
func (c *Checkpoint) TensorByName(name string) (WeightTensor, bool) {
	for _, weight := range c.Weights {
		if weight.Name == name {
			return weight, true
		}
	}
	return WeightTensor{}, false
}

// Validate checks internal consistency: every tensor's data length must
// match its declared shape.
func (c *Checkpoint) Validate() error {
	for _, weight := range c.Weights {
		if len(weight.Shape) == 0 {
			return fmt.Errorf("%w: tensor %s has no shape", ErrShapeMismatch, weight.Name)
		}
		for i, dim := range weight.Shape {
			if dim <= 0 {
				return fmt.Errorf("%w: tensor %s dimension %d has size %d, must be positive",
					ErrShapeMismatch, weight.Name, i, dim)
			}
		}
		if len(weight.Data) != weight.Elements() {
			return fmt.Errorf("%w: tensor %s declares shape %v (%d values) but carries %d",
				ErrShapeMismatch, weight.Name, weight.Shape, weight.Elements(), len(weight.Data))
		}
	}
	return nil
}

// CheckpointSaver handles saving and loading model checkpoints in various formats
type CheckpointSaver struct {
	format CheckpointFormat
}

// NewCheckpointSaver creates a new checkpoint saver for the specified format
func NewCheckpointSaver(format CheckpointFormat) *CheckpointSaver {
	return &CheckpointSaver{
		format: format,
	}
}

// SaveCheckpoint saves a complete model checkpoint
func (cs *CheckpointSaver) SaveCheckpoint(checkpoint *Checkpoint, path string) error {
	switch cs.format {
	case FormatJSON:
		return cs.saveJSON(checkpoint, path)
	case FormatONNX:
		return cs.saveONNX(checkpoint, path)
	default:
		return fmt.Errorf("unsupported checkpoint format: %s", cs.format.String())
	}
}

// LoadCheckpoint loads a model checkpoint
func (cs *CheckpointSaver) LoadCheckpoint(path string) (*Checkpoint, error) {
	var checkpoint *Checkpoint
	var err error

	switch cs.format {
	case FormatJSON:
		checkpoint, err = cs.loadJSON(path)
	case FormatONNX:
		checkpoint, err = cs.loadONNX(path)
	default:
		return nil, fmt.Errorf("unsupported checkpoint format: %s", cs.format.String())
	}
	if err != nil {
		return nil, err
	}

	if err := checkpoint.Validate(); err != nil {
		return nil, fmt.Errorf("invalid checkpoint %s: %w", path, err)
	}
	return checkpoint, nil
}

// saveJSON saves checkpoint in JSON format
func (cs *CheckpointSaver) saveJSON(checkpoint *Checkpoint, path string) error {
	// Ensure metadata is set
	if checkpoint.Metadata.Framework == "" {
		checkpoint.Metadata.Framework = "knsurrogate"
		checkpoint.Metadata.Version = "1.0.0"
		checkpoint.Metadata.CreatedAt = time.Now()
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ") // Pretty print JSON

	if err := encoder.Encode(checkpoint); err != nil {
		return fmt.Errorf("failed to encode checkpoint: %v", err)
	}

	return nil
}

// loadJSON loads checkpoint from JSON format
func (cs *CheckpointSaver) loadJSON(path string) (*Checkpoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file: %v", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	decoder := json.NewDecoder(file)

	if err := decoder.Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %v", err)
	}

	return &checkpoint, nil
}

// saveONNX saves checkpoint in ONNX format
func (cs *CheckpointSaver) saveONNX(checkpoint *Checkpoint, path string) error {
	exporter := NewONNXExporter()
	return exporter.ExportToONNX(checkpoint, path)
}

// loadONNX loads checkpoint from ONNX format
func (cs *CheckpointSaver) loadONNX(path string) (*Checkpoint, error) {
	importer := NewONNXImporter()
	return importer.ImportFromONNX(path)
}
