// package model implements the classification capability over a JSON model
// descriptor exported from the training pipeline (shapes plus the final
// dense layer).
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/core/ports/secondary"
	"gitlab.com/signcall-2025.net/internal/domain"
)

var _ secondary.Classifier = (*Classifier)(nil)

// descriptor is the on-disk model format. Weights are row-major
// (flattened_features x classes).
type descriptor struct {
	InputShape  []int       `json:"input_shape"`
	OutputShape []int       `json:"output_shape"`
	Weights     [][]float64 `json:"weights"`
	Bias        []float64   `json:"bias"`
}

// Classifier scores a feature tensor through a dense layer and softmax.
type Classifier struct {
	inputShape  []int
	outputShape []int
	weights     *mat.Dense
	bias        []float64
	logger      primary.Logger
}

// Load reads a model descriptor from disk. The returned classifier is
// ready for Classify; shape metadata is logged the way the training side
// logs its interpreter details.
func Load(path string, logger primary.Logger) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model descriptor: %w", err)
	}

	var d descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse model descriptor: %w", err)
	}
	if len(d.InputShape) == 0 || len(d.OutputShape) == 0 {
		return nil, fmt.Errorf("model descriptor missing shapes")
	}

	c := &Classifier{
		inputShape:  d.InputShape,
		outputShape: d.OutputShape,
		bias:        d.Bias,
		logger:      logger,
	}

	if len(d.Weights) > 0 {
		cols := len(d.Weights[0])
		flat := make([]float64, 0, len(d.Weights)*cols)
		for _, row := range d.Weights {
			if len(row) != cols {
				return nil, fmt.Errorf("ragged weight matrix in model descriptor")
			}
			flat = append(flat, row...)
		}
		c.weights = mat.NewDense(len(d.Weights), cols, flat)
	}

	logger.Info("model loaded", "in", c.inputShape, "out", c.outputShape, "path", path)
	return c, nil
}

// InputShape returns the declared model input shape.
func (c *Classifier) InputShape() []int {
	return c.inputShape
}

// OutputShape returns the declared model output shape.
func (c *Classifier) OutputShape() []int {
	return c.outputShape
}

// NumClasses returns the class count from the declared output shape.
func (c *Classifier) NumClasses() int {
	if len(c.outputShape) == 0 {
		return 0
	}
	return c.outputShape[len(c.outputShape)-1]
}

// Classify flattens the tensor, applies the dense layer and returns
// softmax scores, one per class.
func (c *Classifier) Classify(ctx context.Context, tensor domain.Tensor) ([]float32, error) {
	if c.weights == nil {
		return nil, fmt.Errorf("model has no weights loaded")
	}

	rows, _ := c.weights.Dims()
	flat := make([]float64, 0, tensor.Frames()*tensor.Width())
	for _, row := range tensor.Data {
		for _, v := range row {
			flat = append(flat, float64(v))
		}
	}
	if len(flat) != rows {
		return nil, fmt.Errorf("tensor size %d does not match model input %d", len(flat), rows)
	}

	x := mat.NewVecDense(len(flat), flat)
	var logits mat.VecDense
	logits.MulVec(c.weights.T(), x)
	for i := 0; i < logits.Len() && i < len(c.bias); i++ {
		logits.SetVec(i, logits.AtVec(i)+c.bias[i])
	}

	return softmax(logits.RawVector().Data), nil
}

func softmax(logits []float64) []float32 {
	maxLogit := math.Inf(-1)
	for _, v := range logits {
		if v > maxLogit {
			maxLogit = v
		}
	}
	var sum float64
	exps := make([]float64, len(logits))
	for i, v := range logits {
		exps[i] = math.Exp(v - maxLogit)
		sum += exps[i]
	}
	out := make([]float32, len(logits))
	for i, v := range exps {
		out[i] = float32(v / sum)
	}
	return out
}
