// Package scoring implements the violation classifier: a small logistic
// regression over four advertisement features. The model is trained once on
// a synthetic dataset, persisted as JSON, and loaded read-only by both the
// API server and the worker.
package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
)

// ViolationThreshold is the probability cutoff above which an
// advertisement is flagged as a violation.
const ViolationThreshold = 0.5

// Training hyperparameters. The dataset mirrors the one the model was
// originally fitted on: violations are unverified sellers with few images
// and short descriptions, with 10% label noise.
const (
	trainSamples = 1000
	trainEpochs  = 2000
	learningRate = 0.5
)

// ErrInvalidModel is returned when a persisted model file does not contain
// a usable weight vector.
var ErrInvalidModel = errors.New("invalid model file")

// Model is a logistic regression classifier. The zero value is unusable;
// obtain one via Train or Load.
type Model struct {
	Weights [FeatureCount]float64 `json:"weights"`
	Bias    float64               `json:"bias"`
}

// PredictProba returns the violation probability in [0, 1] for the given
// feature vector. Pure and safe for concurrent use.
func (m *Model) PredictProba(f Features) float64 {
	z := m.Bias
	for i, w := range m.Weights {
		z += w * f[i]
	}
	return sigmoid(z)
}

// IsViolation applies the fixed decision threshold to a probability.
func IsViolation(probability float64) bool {
	return probability >= ViolationThreshold
}

// Train fits a new model by batch gradient descent on the synthetic
// moderation dataset. The same seed always yields the same model.
func Train(seed int64) *Model {
	rng := rand.New(rand.NewSource(seed))

	features := make([]Features, trainSamples)
	labels := make([]float64, trainSamples)

	for i := 0; i < trainSamples; i++ {
		verified := rng.Intn(2) == 1
		images := rng.Intn(11)
		descLen := 50 + rng.Intn(951)
		category := rng.Intn(100)

		label := 0.0
		if !verified && images < 3 && descLen < 200 {
			label = 1.0
		}
		// 10% label noise keeps the boundary soft
		if rng.Float64() < 0.1 {
			label = 1.0 - label
		}

		desc := make([]byte, descLen)
		for j := range desc {
			desc[j] = 'x'
		}
		features[i] = Extract(verified, images, string(desc), category)
		labels[i] = label
	}

	m := &Model{}
	for epoch := 0; epoch < trainEpochs; epoch++ {
		var gradW [FeatureCount]float64
		var gradB float64
		for i, f := range features {
			err := m.PredictProba(f) - labels[i]
			for j := range gradW {
				gradW[j] += err * f[j]
			}
			gradB += err
		}
		for j := range m.Weights {
			m.Weights[j] -= learningRate * gradW[j] / trainSamples
		}
		m.Bias -= learningRate * gradB / trainSamples
	}

	return m
}

// Save writes the model as JSON to the given path.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// Load reads a model previously written by Save.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	allZero := m.Bias == 0
	for _, w := range m.Weights {
		if w != 0 {
			allZero = false
		}
	}
	if allZero {
		return nil, fmt.Errorf("%w: zero weight vector", ErrInvalidModel)
	}
	return &m, nil
}

// LoadOrTrain loads the model from path, training and persisting a fresh
// one when the file does not exist yet.
func LoadOrTrain(path string, seed int64) (*Model, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		m := Train(seed)
		if err := m.Save(path); err != nil {
			return nil, err
		}
		return m, nil
	}
	return Load(path)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
