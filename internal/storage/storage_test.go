package storage

import (
	"strings"
	"testing"
	"time"
)

func TestGenerationObjectName(t *testing.T) {
	now := time.Date(2026, 3, 7, 12, 30, 0, 0, time.UTC)

	name := generationObjectName("report", now)

	if !strings.HasPrefix(name, "report/2026/03/07/") {
		t.Errorf("Expected date-partitioned prefix, got %q", name)
	}
	if !strings.HasSuffix(name, ".json") {
		t.Errorf("Expected .json suffix, got %q", name)
	}

	// Names must be unique per archive call
	other := generationObjectName("report", now)
	if name == other {
		t.Error("Expected unique object names for repeated calls")
	}
}
