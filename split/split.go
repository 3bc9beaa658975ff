// Package split partitions a line-delimited data file into training
// and validation files by random sampling without replacement.
package split

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/rand"

	"varnamer/corpus"
	"varnamer/internal/progress"
)

// File splits dataPath into <outDir>/training<ext> and
// <outDir>/validation<ext>, where <ext> is the source file's
// extension. The validation set holds floor(N*ratio) lines chosen
// uniformly at random by line position, independent of content; the
// remaining lines form the training set. The sampling is seeded from
// the clock, so re-running produces a different partition.
func File(dataPath, outDir string, ratio float64, bar *progress.Bar) (trainingPath, validationPath string, err error) {
	if ratio < 0 || ratio > 1 {
		return "", "", fmt.Errorf("validation ratio %v outside [0,1]", ratio)
	}

	exampleCount, err := corpus.CountLines(dataPath)
	if err != nil {
		return "", "", err
	}
	validationCount := int(math.Floor(float64(exampleCount) * ratio))

	rng := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	validation := make(map[int]struct{}, validationCount)
	for _, index := range rng.Perm(exampleCount)[:validationCount] {
		validation[index] = struct{}{}
	}

	ext := filepath.Ext(dataPath)
	trainingPath = filepath.Join(outDir, "training"+ext)
	validationPath = filepath.Join(outDir, "validation"+ext)

	if err := route(dataPath, trainingPath, validationPath, validation, bar); err != nil {
		return "", "", err
	}
	return trainingPath, validationPath, nil
}

// route streams the source a second time, copying each line to the
// output its position was assigned to.
func route(dataPath, trainingPath, validationPath string, validation map[int]struct{}, bar *progress.Bar) error {
	in, err := os.Open(dataPath)
	if err != nil {
		return err
	}
	defer in.Close()

	trainingFile, err := os.Create(trainingPath)
	if err != nil {
		return err
	}
	defer trainingFile.Close()

	validationFile, err := os.Create(validationPath)
	if err != nil {
		return err
	}
	defer validationFile.Close()

	trainingWriter := bufio.NewWriter(trainingFile)
	validationWriter := bufio.NewWriter(validationFile)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	index := 0
	for scanner.Scan() {
		w := trainingWriter
		if _, ok := validation[index]; ok {
			w = validationWriter
		}
		if _, err := w.Write(scanner.Bytes()); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
		index++
		bar.Add(1)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if err := trainingWriter.Flush(); err != nil {
		return err
	}
	return validationWriter.Flush()
}
