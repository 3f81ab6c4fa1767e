// internal/difficulty/load.go
//
// YAML overrides for the difficulty table (DIFFICULTY_FILE).
//
// Example:
//
//	tiers:
//	  - tier: Sprout
//	    grades: ["PreK", "K"]
//	    gridSize: 4
//	    focusBudget: 999
//	    gentleMode: true
//	    wordsPerRound: 1
//	    maxStrikes: 3
//	    consequences:
//	      onFocusZero: endTurn
//	      onIncorrectSubmit: addToReview
//	  - tier: Ranger
//	    timerDuration: 90s
//	    shuffleInterval: 30s
//	    ...

package difficulty

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Tiers []Config `yaml:"tiers"`
}

// Parse decodes a YAML difficulty table.
func Parse(data []byte) ([]Config, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("difficulty: parse: %w", err)
	}
	if len(f.Tiers) == 0 {
		return nil, fmt.Errorf("difficulty: no tiers defined")
	}
	return f.Tiers, nil
}

// LoadFile reads and validates a YAML table and installs it with Override.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("difficulty: read %s: %w", path, err)
	}
	configs, err := Parse(data)
	if err != nil {
		return err
	}
	return Override(configs)
}
