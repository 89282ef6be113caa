package config

import (
	"strings"
	"testing"

	"github.com/snowhive/snowhive/pkg/models"
)

func TestLoadRoster(t *testing.T) {
	path := writeFile(t, t.TempDir(), "roster.yaml", `
specialists:
  - type: data-specialist
    max_concurrent: 4
    success_rate: 0.95
    tasks_completed: 200
    avg_execution_time: 5m
    complexity_rating: 4.5
  - type: qa-specialist
    max_concurrent: 1
    success_rate: 0.99
    tasks_completed: 10
    avg_execution_time: 2m
    complexity_rating: 3.0
`)

	specialists, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(specialists) != 2 {
		t.Fatalf("got %d specialists, want 2", len(specialists))
	}

	data := specialists[0]
	if data.Type != models.SpecialistData {
		t.Errorf("type = %s, want data-specialist", data.Type)
	}
	if data.Capacity.MaxConcurrent != 4 {
		t.Errorf("max concurrent = %d, want 4", data.Capacity.MaxConcurrent)
	}
	if data.Performance.SuccessRate != 0.95 {
		t.Errorf("success rate = %v, want 0.95", data.Performance.SuccessRate)
	}
}

func TestLoadRoster_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown type",
			yaml:    "specialists:\n  - type: barista\n    max_concurrent: 1\n",
			wantErr: "unknown specialist type",
		},
		{
			name: "duplicate type",
			yaml: "specialists:\n" +
				"  - type: data-specialist\n    max_concurrent: 1\n" +
				"  - type: data-specialist\n    max_concurrent: 2\n",
			wantErr: "duplicate",
		},
		{
			name:    "zero capacity",
			yaml:    "specialists:\n  - type: data-specialist\n    max_concurrent: 0\n",
			wantErr: "max_concurrent",
		},
		{
			name:    "bad success rate",
			yaml:    "specialists:\n  - type: data-specialist\n    max_concurrent: 1\n    success_rate: 1.5\n",
			wantErr: "success_rate",
		},
		{
			name:    "empty roster",
			yaml:    "specialists: []\n",
			wantErr: "no specialists",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "roster.yaml", tc.yaml)
			_, err := LoadRoster(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q should mention %q", err, tc.wantErr)
			}
		})
	}
}
