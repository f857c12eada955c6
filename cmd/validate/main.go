package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/splatform/playback-engine/pkg/experience"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <experience.json> [more.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

var filenamePattern = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("experience file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !filenamePattern.MatchString(nameWithoutExt) {
		return fmt.Errorf("experience filename %q must be lowercase snake_case (e.g. museum_hunt.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var exp experience.Experience
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&exp); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	if err := exp.Validate(); err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}

	warnAuthoringGaps(&exp)
	return nil
}

// warnAuthoringGaps prints non-fatal hints for content that plays but is
// probably unfinished.
func warnAuthoringGaps(exp *experience.Experience) {
	if len(exp.WinConditions) == 0 {
		fmt.Println("  warning: no win conditions; the session can never be won")
	}
	requiredEnabled := 0
	for _, c := range exp.WinConditions {
		if c.Enabled && c.Required {
			requiredEnabled++
		}
	}
	if len(exp.WinConditions) > 0 && requiredEnabled == 0 {
		fmt.Println("  warning: no enabled required win condition; the session can never be won")
	}
	for _, obj := range exp.Objects {
		if len(obj.Interactions) == 0 {
			continue
		}
		enabled := 0
		for _, ic := range obj.Interactions {
			if ic.Enabled {
				enabled++
			}
		}
		if enabled == 0 {
			fmt.Printf("  warning: object %q has interactions but none are enabled\n", obj.ID)
		}
	}
}
