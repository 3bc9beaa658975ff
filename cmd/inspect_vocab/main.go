// Dumps a persisted vocabulary for debugging: size, reserved token
// IDs, and the highest-ranked entries.
package main

import (
	"flag"
	"log"
	"sort"

	"github.com/davecgh/go-spew/spew"

	"varnamer/vocab"
)

var topCount = flag.Int("n", 20, "How many of the highest-ranked tokens to show")

type entry struct {
	Token string
	ID    int
}

type summary struct {
	Path     string
	Size     int
	Reserved map[string]int
	Top      []entry
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: inspect_vocab [flags] <vocabulary.json>")
	}
	path := flag.Arg(0)

	v, err := vocab.Load(path)
	if err != nil {
		log.Fatalf("Failed to load vocabulary: %v", err)
	}

	entries := make([]entry, 0, v.Size())
	for token, id := range v {
		entries = append(entries, entry{Token: token, ID: id})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	if len(entries) > *topCount {
		entries = entries[:*topCount]
	}

	reserved := make(map[string]int)
	for _, token := range []string{vocab.PadToken, vocab.UnknownToken} {
		if id, ok := v.ID(token); ok {
			reserved[token] = id
		}
	}

	spew.Dump(summary{
		Path:     path,
		Size:     v.Size(),
		Reserved: reserved,
		Top:      entries,
	})
}
