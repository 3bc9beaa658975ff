// Package nn implements a feed-forward classifier over a shared token
// embedding table. Every input feature indexes the same table; the
// concatenated embeddings feed ReLU hidden layers and a softmax output
// over the label vocabulary. Training is minibatch SGD with manual
// backpropagation.
package nn

import (
	"encoding/gob"
	"math"
	"math/rand"
	"os"

	"github.com/pkg/errors"
)

// MissingFeature marks a feature column with no token. It embeds to a
// zero vector and receives no gradient.
const MissingFeature = -1

// Sample is one training row: the label ID and the fixed-width feature
// IDs.
type Sample struct {
	Label    int
	Features []int
}

// Linear is a dense layer storing weights row-major as
// [OutputSize][InputSize].
type Linear struct {
	InputSize  int
	OutputSize int
	Weights    [][]float64
	Biases     []float64

	gradW [][]float64
	gradB []float64
}

func newLinear(inputSize, outputSize int) *Linear {
	scale := 1 / math.Sqrt(float64(inputSize))
	weights := make([][]float64, outputSize)
	for i := range weights {
		row := make([]float64, inputSize)
		for j := range row {
			row[j] = (rand.Float64()*2 - 1) * scale
		}
		weights[i] = row
	}
	return &Linear{
		InputSize:  inputSize,
		OutputSize: outputSize,
		Weights:    weights,
		Biases:     make([]float64, outputSize),
	}
}

func (l *Linear) forward(input []float64) []float64 {
	output := make([]float64, l.OutputSize)
	for i, row := range l.Weights {
		sum := l.Biases[i]
		for j, x := range input {
			sum += row[j] * x
		}
		output[i] = sum
	}
	return output
}

// backward accumulates weight and bias gradients for the given output
// gradient and returns the gradient with respect to the layer input.
func (l *Linear) backward(dout, input []float64) []float64 {
	din := make([]float64, l.InputSize)
	for i, d := range dout {
		l.gradB[i] += d
		row := l.Weights[i]
		grad := l.gradW[i]
		for j, x := range input {
			grad[j] += d * x
			din[j] += d * row[j]
		}
	}
	return din
}

func (l *Linear) zeroGrads() {
	if l.gradW == nil {
		l.gradW = make([][]float64, l.OutputSize)
		for i := range l.gradW {
			l.gradW[i] = make([]float64, l.InputSize)
		}
		l.gradB = make([]float64, l.OutputSize)
		return
	}
	for i := range l.gradW {
		for j := range l.gradW[i] {
			l.gradW[i][j] = 0
		}
		l.gradB[i] = 0
	}
}

func (l *Linear) step(learningRate float64) {
	for i, row := range l.Weights {
		grad := l.gradW[i]
		for j := range row {
			row[j] -= learningRate * grad[j]
		}
		l.Biases[i] -= learningRate * l.gradB[i]
	}
}

// Network is the classifier: one shared embedding table, configurable
// hidden layers, and an output layer sized to the output vocabulary.
type Network struct {
	InputVocabSize int
	EmbeddingDim   int
	FeatureCount   int
	Embedding      [][]float64 // [InputVocabSize][EmbeddingDim]
	Hidden         []*Linear
	Output         *Linear

	embGrad map[int][]float64
}

// NewNetwork builds a randomly initialized classifier. featureCount is
// the fixed number of feature columns per example; the first hidden
// layer therefore takes featureCount*embeddingDim inputs.
func NewNetwork(inputVocabSize, featureCount, embeddingDim int, hiddenUnits []int, outputSize int) *Network {
	embedding := make([][]float64, inputVocabSize)
	for i := range embedding {
		row := make([]float64, embeddingDim)
		for j := range row {
			row[j] = (rand.Float64()*2 - 1) * 0.1
		}
		embedding[i] = row
	}

	inputSize := featureCount * embeddingDim
	hidden := make([]*Linear, len(hiddenUnits))
	for i, units := range hiddenUnits {
		hidden[i] = newLinear(inputSize, units)
		inputSize = units
	}

	return &Network{
		InputVocabSize: inputVocabSize,
		EmbeddingDim:   embeddingDim,
		FeatureCount:   featureCount,
		Embedding:      embedding,
		Hidden:         hidden,
		Output:         newLinear(inputSize, outputSize),
	}
}

// embed concatenates the embedding rows of the given feature IDs.
func (n *Network) embed(features []int) ([]float64, error) {
	if len(features) != n.FeatureCount {
		return nil, errors.Errorf("example has %d features, want %d", len(features), n.FeatureCount)
	}
	x := make([]float64, n.FeatureCount*n.EmbeddingDim)
	for i, id := range features {
		if id == MissingFeature {
			continue
		}
		if id < 0 || id >= n.InputVocabSize {
			return nil, errors.Errorf("feature ID %d outside input vocabulary of %d", id, n.InputVocabSize)
		}
		copy(x[i*n.EmbeddingDim:(i+1)*n.EmbeddingDim], n.Embedding[id])
	}
	return x, nil
}

// forward runs the full pass, returning every layer's input activation
// (activations[0] is the embedded input), the hidden pre-activations,
// and the output logits.
func (n *Network) forward(features []int) (activations [][]float64, preacts [][]float64, logits []float64, err error) {
	x, err := n.embed(features)
	if err != nil {
		return nil, nil, nil, err
	}
	activations = make([][]float64, len(n.Hidden)+1)
	preacts = make([][]float64, len(n.Hidden))
	activations[0] = x
	h := x
	for i, layer := range n.Hidden {
		z := layer.forward(h)
		preacts[i] = z
		a := make([]float64, len(z))
		for j, v := range z {
			if v > 0 {
				a[j] = v
			}
		}
		activations[i+1] = a
		h = a
	}
	return activations, preacts, n.Output.forward(h), nil
}

func softmax(logits []float64) []float64 {
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	probs := make([]float64, len(logits))
	for i, v := range logits {
		probs[i] = math.Exp(v - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// accumulate runs forward and backward for one sample, adding its
// gradients to the batch accumulators, and returns its cross-entropy
// loss.
func (n *Network) accumulate(s Sample) (float64, error) {
	if s.Label < 0 || s.Label >= n.Output.OutputSize {
		return 0, errors.Errorf("label %d outside output space of %d", s.Label, n.Output.OutputSize)
	}
	activations, preacts, logits, err := n.forward(s.Features)
	if err != nil {
		return 0, err
	}
	probs := softmax(logits)
	loss := -math.Log(math.Max(probs[s.Label], 1e-12))

	dlogits := make([]float64, len(probs))
	copy(dlogits, probs)
	dlogits[s.Label]--

	dh := n.Output.backward(dlogits, activations[len(activations)-1])
	for i := len(n.Hidden) - 1; i >= 0; i-- {
		for j := range dh {
			if preacts[i][j] <= 0 {
				dh[j] = 0
			}
		}
		dh = n.Hidden[i].backward(dh, activations[i])
	}

	// dh is now the gradient of the concatenated embeddings; scatter it
	// back onto the rows that produced them.
	for i, id := range s.Features {
		if id == MissingFeature {
			continue
		}
		grad := n.embGrad[id]
		if grad == nil {
			grad = make([]float64, n.EmbeddingDim)
			n.embGrad[id] = grad
		}
		segment := dh[i*n.EmbeddingDim : (i+1)*n.EmbeddingDim]
		for j, v := range segment {
			grad[j] += v
		}
	}
	return loss, nil
}

func (n *Network) zeroGrads() {
	for _, layer := range n.Hidden {
		layer.zeroGrads()
	}
	n.Output.zeroGrads()
	n.embGrad = make(map[int][]float64)
}

// TrainBatch runs one minibatch of SGD, averaging gradients over the
// batch, and returns the mean cross-entropy loss.
func (n *Network) TrainBatch(batch []Sample, learningRate float64) (float64, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	n.zeroGrads()
	var total float64
	for _, s := range batch {
		loss, err := n.accumulate(s)
		if err != nil {
			return 0, err
		}
		total += loss
	}
	step := learningRate / float64(len(batch))
	for _, layer := range n.Hidden {
		layer.step(step)
	}
	n.Output.step(step)
	for id, grad := range n.embGrad {
		row := n.Embedding[id]
		for j, v := range grad {
			row[j] -= step * v
		}
	}
	return total / float64(len(batch)), nil
}

// Loss returns the cross-entropy loss of one sample without updating
// any weights.
func (n *Network) Loss(s Sample) (float64, error) {
	if s.Label < 0 || s.Label >= n.Output.OutputSize {
		return 0, errors.Errorf("label %d outside output space of %d", s.Label, n.Output.OutputSize)
	}
	_, _, logits, err := n.forward(s.Features)
	if err != nil {
		return 0, err
	}
	probs := softmax(logits)
	return -math.Log(math.Max(probs[s.Label], 1e-12)), nil
}

// Predict returns the highest-scoring label ID for the given features.
func (n *Network) Predict(features []int) (int, error) {
	_, _, logits, err := n.forward(features)
	if err != nil {
		return 0, err
	}
	best := 0
	for i, v := range logits {
		if v > logits[best] {
			best = i
		}
	}
	return best, nil
}

// Save persists the network with gob.
func (n *Network) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating model file")
	}
	defer file.Close()
	if err := gob.NewEncoder(file).Encode(n); err != nil {
		return errors.Wrap(err, "encoding model")
	}
	return nil
}

// Load reads a network previously written by Save.
func Load(path string) (*Network, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening model file")
	}
	defer file.Close()
	var n Network
	if err := gob.NewDecoder(file).Decode(&n); err != nil {
		return nil, errors.Wrap(err, "decoding model")
	}
	return &n, nil
}
