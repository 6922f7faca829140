// Package pretrained runs inference on an imported ONNX classifier via the
// ONNX Runtime. The model file ships with a JSON metadata sidecar describing
// its input shape and class labels.
package pretrained

import (
	"encoding/json"
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"
)

// Metadata is the sidecar description of an exported model. It lives next to
// the .onnx file as <model>.json.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
	Channels    int      `json:"channels"`
}

// LoadMetadata reads and validates a model sidecar.
func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("pretrained: read metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return Metadata{}, fmt.Errorf("pretrained: parse metadata: %w", err)
	}
	if m.InputName == "" {
		m.InputName = "input"
	}
	if m.OutputName == "" {
		m.OutputName = "output"
	}
	if m.Channels == 0 {
		m.Channels = 1
	}
	if m.Channels != 1 && m.Channels != 3 {
		return Metadata{}, fmt.Errorf("pretrained: unsupported channel count %d (want 1 or 3)", m.Channels)
	}
	if len(m.InputShape) == 0 || len(m.Classes) == 0 || m.ImageSize <= 0 {
		return Metadata{}, fmt.Errorf("pretrained: metadata missing input_shape, classes or image_size")
	}
	return m, nil
}

// Prediction is one classification result.
type Prediction struct {
	Class      string             `json:"class"`
	Confidence float32            `json:"confidence"`
	Scores     map[string]float32 `json:"scores"`
}

// Classifier wraps an ONNX Runtime session over a single imported model.
// Not safe for concurrent Predict calls; the session reuses its tensors.
type Classifier struct {
	Metadata Metadata

	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// Open initializes the ONNX Runtime environment and loads the model at
// modelPath with its metadata sidecar at metadataPath.
func Open(modelPath, metadataPath string) (*Classifier, error) {
	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("pretrained: initialize ONNX runtime: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("pretrained: create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("pretrained: create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("pretrained: create session: %w", err)
	}

	return &Classifier{
		Metadata:     metadata,
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Predict runs the model on one preprocessed input and returns the top class
// with the full score map.
func (c *Classifier) Predict(input []float32) (*Prediction, error) {
	buf := c.inputTensor.GetData()
	if len(input) != len(buf) {
		return nil, fmt.Errorf("pretrained: input has %d values, model expects %d", len(input), len(buf))
	}
	copy(buf, input)

	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("pretrained: inference: %w", err)
	}

	out := c.outputTensor.GetData()
	scores := make(map[string]float32, len(c.Metadata.Classes))
	maxIdx := 0
	for i, class := range c.Metadata.Classes {
		if i >= len(out) {
			break
		}
		scores[class] = out[i]
		if out[i] > out[maxIdx] {
			maxIdx = i
		}
	}

	return &Prediction{
		Class:      c.Metadata.Classes[maxIdx],
		Confidence: out[maxIdx],
		Scores:     scores,
	}, nil
}

// Close releases the session, its tensors, and the runtime environment.
func (c *Classifier) Close() {
	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
	if c.session != nil {
		c.session.Destroy()
	}
	ort.DestroyEnvironment()
}
