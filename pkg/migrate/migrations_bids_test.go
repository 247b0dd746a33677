package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/haulhub-backend/pkg/migrate"
)

func TestBidsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_bids.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no bids migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS bids",
		"FOREIGN KEY (load_id) REFERENCES loads(id) ON DELETE CASCADE",
		"FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE SET NULL",
		"CHECK (price > 0)",
		"CHECK (progress >= 0 AND progress <= 100)",
		"DROP TABLE IF EXISTS bids",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestLoadsMigrationContainsTrackingIndex(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_loads.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no loads migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_loads_tracking_code",
		"status load_status NOT NULL DEFAULT 'posted'",
		"DROP TABLE IF EXISTS loads",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migration dir failed validation: %v", err)
	}
}
