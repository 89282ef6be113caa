package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/snowhive/snowhive/pkg/models"
)

// rosterFile is the YAML shape of a specialist roster override.
type rosterFile struct {
	Specialists []rosterEntry `yaml:"specialists"`
}

type rosterEntry struct {
	Type             string        `yaml:"type"`
	MaxConcurrent    int           `yaml:"max_concurrent"`
	SuccessRate      float64       `yaml:"success_rate"`
	TasksCompleted   int           `yaml:"tasks_completed"`
	AvgExecutionTime time.Duration `yaml:"avg_execution_time"`
	ComplexityRating float64       `yaml:"complexity_rating"`
}

// LoadRoster reads a specialist roster from a YAML file. Entries are
// validated: unknown types, non-positive capacities, and out-of-range
// metrics are errors rather than silently clamped.
func LoadRoster(path string) ([]models.Specialist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(file.Specialists) == 0 {
		return nil, fmt.Errorf("roster %s defines no specialists", path)
	}

	seen := make(map[models.SpecialistType]bool)
	specialists := make([]models.Specialist, 0, len(file.Specialists))
	for i, entry := range file.Specialists {
		typ := models.SpecialistType(entry.Type)
		if !typ.Valid() {
			return nil, fmt.Errorf("roster entry %d: unknown specialist type %q", i, entry.Type)
		}
		if seen[typ] {
			return nil, fmt.Errorf("roster entry %d: duplicate specialist type %q", i, entry.Type)
		}
		seen[typ] = true

		if entry.MaxConcurrent <= 0 {
			return nil, fmt.Errorf("roster entry %d (%s): max_concurrent must be positive", i, entry.Type)
		}
		if entry.SuccessRate < 0 || entry.SuccessRate > 1 {
			return nil, fmt.Errorf("roster entry %d (%s): success_rate must be in [0,1]", i, entry.Type)
		}
		if entry.ComplexityRating < 0 || entry.ComplexityRating > 5 {
			return nil, fmt.Errorf("roster entry %d (%s): complexity_rating must be in [0,5]", i, entry.Type)
		}

		specialists = append(specialists, models.Specialist{
			Type:     typ,
			Capacity: models.Capacity{MaxConcurrent: entry.MaxConcurrent},
			Performance: models.Performance{
				SuccessRate:      entry.SuccessRate,
				TasksCompleted:   entry.TasksCompleted,
				AvgExecutionTime: entry.AvgExecutionTime,
				ComplexityRating: entry.ComplexityRating,
				LastActivity:     time.Now(),
			},
		})
	}
	return specialists, nil
}
