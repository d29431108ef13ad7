// Command mapdoc-check validates a map document file and verifies that it
// survives an export→import round trip without loss.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"

	"mapcore/pkg/domain"
)

func main() {
	var (
		inPath    = flag.String("in", "", "map document file to check (default stdin)")
		roundTrip = flag.Bool("round-trip", true, "re-encode and re-decode to verify losslessness")
		quiet     = flag.Bool("q", false, "suppress the summary line")
	)
	flag.Parse()

	if err := run(*inPath, *roundTrip, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "mapdoc-check: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath string, roundTrip, quiet bool) error {
	data, err := readInput(inPath)
	if err != nil {
		return err
	}
	doc, err := domain.DecodeDocument(data)
	if err != nil {
		return err
	}
	if roundTrip {
		encoded, err := domain.EncodeDocument(doc)
		if err != nil {
			return fmt.Errorf("re-encode: %w", err)
		}
		again, err := domain.DecodeDocument(encoded)
		if err != nil {
			return fmt.Errorf("re-decode: %w", err)
		}
		if !reflect.DeepEqual(doc, again) {
			return fmt.Errorf("document did not survive a round trip")
		}
	}
	if !quiet {
		fmt.Printf("ok: version=%d interactive=%d impassable=%d assets=%d world=%gx%g\n",
			doc.Version, len(doc.InteractiveAreas), len(doc.ImpassableAreas), len(doc.Assets),
			doc.WorldDimensions.Width, doc.WorldDimensions.Height)
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
