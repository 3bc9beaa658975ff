package vocab

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"varnamer/corpus"
)

func TestCountInputTokensSkipsPaddingAndPlaceholder(t *testing.T) {
	lines := strings.Repeat(`{"input":[["0PAD","0PAD","0MID","0PAD","0PAD"]],"output":"x"}`+"\n", 3)
	counts, err := CountInputTokens(corpus.NewReader(strings.NewReader(lines)), nil)
	if err != nil {
		t.Fatalf("CountInputTokens failed: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("counts = %v; expected no entries for padding-only corpus", counts)
	}
}

func TestCountInputTokens(t *testing.T) {
	lines := `{"input":[["a","b","0MID","b","0PAD"],["a","0PAD","0MID","0PAD","0PAD"]],"output":"x"}` + "\n" +
		`{"input":[["c","a","0MID","0PAD","0PAD"]],"output":"y"}` + "\n"
	counts, err := CountInputTokens(corpus.NewReader(strings.NewReader(lines)), nil)
	if err != nil {
		t.Fatalf("CountInputTokens failed: %v", err)
	}
	expected := map[string]int{"a": 3, "b": 2, "c": 1}
	if !reflect.DeepEqual(counts, expected) {
		t.Errorf("counts = %v; expected %v", counts, expected)
	}
}

func TestCountOutputTokens(t *testing.T) {
	lines := `{"input":[["a","0MID","b"]],"output":"x"}` + "\n" +
		`{"input":[["a","0MID","b"]],"output":"y"}` + "\n" +
		`{"input":[["a","0MID","b"]],"output":"x"}` + "\n"
	counts, err := CountOutputTokens(corpus.NewReader(strings.NewReader(lines)), nil)
	if err != nil {
		t.Fatalf("CountOutputTokens failed: %v", err)
	}
	expected := map[string]int{"x": 2, "y": 1}
	if !reflect.DeepEqual(counts, expected) {
		t.Errorf("counts = %v; expected %v", counts, expected)
	}
}

func TestBuild(t *testing.T) {
	testCases := []struct {
		name     string
		counts   map[string]int
		size     int
		reserved []string
		expected Vocabulary
	}{
		{
			name:     "truncates to size by descending count",
			counts:   map[string]int{"a": 5, "b": 3, "c": 1},
			size:     2,
			reserved: []string{PadToken, UnknownToken},
			expected: Vocabulary{"a": 0, "b": 1, PadToken: 2, UnknownToken: 3},
		},
		{
			name:     "ties break lexicographically",
			counts:   map[string]int{"z": 2, "m": 2, "a": 2},
			size:     2,
			reserved: []string{UnknownToken},
			expected: Vocabulary{"a": 0, "m": 1, UnknownToken: 2},
		},
		{
			name:     "fewer tokens than size yields smaller vocabulary",
			counts:   map[string]int{"a": 1},
			size:     100,
			reserved: []string{PadToken, UnknownToken},
			expected: Vocabulary{"a": 0, PadToken: 1, UnknownToken: 2},
		},
		{
			name:     "observed reserved token is not ranked twice",
			counts:   map[string]int{UnknownToken: 9, "a": 1},
			size:     10,
			reserved: []string{UnknownToken},
			expected: Vocabulary{"a": 0, UnknownToken: 1},
		},
		{
			name:     "empty counts leaves only reserved tokens",
			counts:   map[string]int{},
			size:     4,
			reserved: []string{PadToken, UnknownToken},
			expected: Vocabulary{PadToken: 0, UnknownToken: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := Build(tc.counts, tc.size, tc.reserved...)
			if !reflect.DeepEqual(v, tc.expected) {
				t.Errorf("Build() = %v; expected %v", v, tc.expected)
			}
		})
	}
}

func TestBuildNeverExceedsSizePlusReserved(t *testing.T) {
	counts := make(map[string]int)
	for _, token := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		counts[token] = len(token)
	}
	v := Build(counts, 3, PadToken, UnknownToken)
	if v.Size() > 3+2 {
		t.Errorf("vocabulary has %d entries; expected at most %d", v.Size(), 5)
	}
}

func TestBuildReservedTokensHaveHighestIDs(t *testing.T) {
	v := Build(map[string]int{"a": 3, "b": 2, "c": 1}, 3, PadToken, UnknownToken)
	for token, id := range v {
		if token == PadToken || token == UnknownToken {
			continue
		}
		if id >= v.PadID() || id >= v.UnknownID() {
			t.Errorf("ranked token %q has ID %d, not below reserved IDs %d/%d",
				token, id, v.PadID(), v.UnknownID())
		}
	}
	if v.UnknownID() != v.Size()-1 {
		t.Errorf("UnknownID = %d; expected %d", v.UnknownID(), v.Size()-1)
	}
}

func TestSaveLoad(t *testing.T) {
	v := Build(map[string]int{"a": 2, "b": 1}, 2, PadToken, UnknownToken)
	path := filepath.Join(t.TempDir(), "input_vocabulary.json")
	if err := v.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, v) {
		t.Errorf("Load() = %v; expected %v", loaded, v)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected an error loading a missing vocabulary file")
	}
}
