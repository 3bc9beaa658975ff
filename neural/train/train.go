// Package train drives classifier training over the exported CSV
// files: a bounded number of epochs, each re-opening the training file
// and consuming batches until end of data.
package train

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"varnamer/corpus"
	"varnamer/csvdata"
	"varnamer/neural/nn"
)

// Config holds the training hyperparameters. Vocabulary sizes include
// the reserved tokens.
type Config struct {
	SequencesPerExample int     `json:"sequences_per_example"`
	ContextSize         int     `json:"context_size"`
	InputVocabSize      int     `json:"input_vocabulary_size"`
	OutputVocabSize     int     `json:"output_vocabulary_size"`
	EmbeddingDimensions int     `json:"embedding_dimensions"`
	HiddenUnits         []int   `json:"hidden_units"`
	BatchSize           int     `json:"batch_size"`
	Epochs              int     `json:"epochs"`
	LearningRate        float64 `json:"learning_rate"`
	ModelDirectory      string  `json:"-"`
}

// FeatureNames lists the feature columns in file order, one per
// (sequence, side, position) triple.
func FeatureNames(sequences, contextSize int) []string {
	names := make([]string, 0, 2*contextSize*sequences)
	for s := 0; s < sequences; s++ {
		for _, side := range []string{"left", "right"} {
			for c := 0; c < contextSize; c++ {
				names = append(names, fmt.Sprintf("seq%d_%s%d", s, side, c))
			}
		}
	}
	return names
}

// Metadata is written beside the model so the feature layout the model
// was trained against is recoverable.
type Metadata struct {
	FeatureNames []string `json:"feature_names"`
	Config       Config   `json:"config"`
}

// Train builds a classifier from cfg and trains it on trainingPath.
// Each epoch re-opens the training file; end of data ends the epoch
// normally. The validation file is counted and logged but not consumed
// in the training control flow. The model and its metadata are saved
// under cfg.ModelDirectory.
func Train(cfg Config, trainingPath, validationPath string) (*nn.Network, error) {
	featureCount := 2 * cfg.ContextSize * cfg.SequencesPerExample
	network := nn.NewNetwork(cfg.InputVocabSize, featureCount,
		cfg.EmbeddingDimensions, cfg.HiddenUnits, cfg.OutputVocabSize)

	if validationPath != "" {
		count, err := corpus.CountLines(validationPath)
		if err != nil {
			return nil, errors.Wrap(err, "reading validation data")
		}
		log.Printf("validation examples: %d (not consumed during training)", count)
	}

	columns := featureCount + 1
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		meanLoss, batches, err := runEpoch(network, trainingPath, columns, cfg.BatchSize, cfg.LearningRate)
		if err != nil {
			return nil, err
		}
		log.Printf("epoch %d/%d: %d batches, mean loss %.4f", epoch+1, cfg.Epochs, batches, meanLoss)
		if batches == 0 {
			// No data at all: stop instead of spinning through the
			// remaining epochs.
			break
		}
	}

	if err := save(network, cfg); err != nil {
		return nil, err
	}
	return network, nil
}

// runEpoch streams one full pass over the training file in batches.
// io.EOF from the reader is the expected end of the epoch, never an
// error.
func runEpoch(network *nn.Network, trainingPath string, columns, batchSize int, learningRate float64) (float64, int, error) {
	file, err := os.Open(trainingPath)
	if err != nil {
		return 0, 0, errors.Wrap(err, "opening training data")
	}
	defer file.Close()

	reader := csvdata.NewReader(file, columns)
	var totalLoss float64
	var batches int
	for {
		batch, err := readBatch(reader, batchSize)
		if err != nil && err != io.EOF {
			return 0, 0, errors.Wrap(err, "reading training data")
		}
		if len(batch) > 0 {
			loss, trainErr := network.TrainBatch(batch, learningRate)
			if trainErr != nil {
				return 0, 0, trainErr
			}
			totalLoss += loss
			batches++
		}
		if err == io.EOF {
			break
		}
	}

	mean := 0.0
	if batches > 0 {
		mean = totalLoss / float64(batches)
	}
	return mean, batches, nil
}

// readBatch collects up to size samples. A short (possibly empty)
// batch is returned together with io.EOF at the end of the file.
func readBatch(reader *csvdata.Reader, size int) ([]nn.Sample, error) {
	batch := make([]nn.Sample, 0, size)
	for len(batch) < size {
		label, features, err := reader.Next()
		if err != nil {
			return batch, err
		}
		batch = append(batch, nn.Sample{Label: label, Features: features})
	}
	return batch, nil
}

func save(network *nn.Network, cfg Config) error {
	if err := os.MkdirAll(cfg.ModelDirectory, 0o755); err != nil {
		return errors.Wrap(err, "creating model directory")
	}
	if err := network.Save(filepath.Join(cfg.ModelDirectory, "model.gob")); err != nil {
		return err
	}
	meta := Metadata{
		FeatureNames: FeatureNames(cfg.SequencesPerExample, cfg.ContextSize),
		Config:       cfg,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding metadata")
	}
	path := filepath.Join(cfg.ModelDirectory, "metadata.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "writing metadata")
	}
	return nil
}
