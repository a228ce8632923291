package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	rawDatabaseID    = "1a2b3c4d5e6f4a8b9c0d1e2f3a4b5c6d"
	dashedDatabaseID = "1a2b3c4d-5e6f-4a8b-9c0d-1e2f3a4b5c6d"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	configContent := `
server:
  addr: ":9090"
cache:
  path: "/data/cache.db"
rooms:
  enable_heuristics: true
offline: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv("NOTION_TOKEN", "test-token-123")
	t.Setenv("NOTION_DATABASE_ID", rawDatabaseID)
	t.Setenv("NOTION_ROOMS_DATABASE_ID", "")
	t.Setenv("NOTION_ITEMS_DATABASE_ID", "")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Cache.Path != "/data/cache.db" {
		t.Errorf("Cache.Path = %q, want /data/cache.db", cfg.Cache.Path)
	}
	if !cfg.Rooms.EnableHeuristics {
		t.Error("Rooms.EnableHeuristics = false, want true")
	}
	if !cfg.Offline {
		t.Error("Offline = false, want true")
	}
	if cfg.NotionToken != "test-token-123" {
		t.Errorf("NotionToken = %q", cfg.NotionToken)
	}
	if cfg.DatabaseID != dashedDatabaseID {
		t.Errorf("DatabaseID = %q, want %q", cfg.DatabaseID, dashedDatabaseID)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("NOTION_TOKEN", "test-token-123")
	t.Setenv("NOTION_DATABASE_ID", rawDatabaseID)
	t.Setenv("NOTION_ROOMS_DATABASE_ID", "")
	t.Setenv("NOTION_ITEMS_DATABASE_ID", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default :8080", cfg.Server.Addr)
	}
	if cfg.Offline {
		t.Error("Offline = true, want false by default")
	}
	if cfg.Rooms.EnableHeuristics {
		t.Error("EnableHeuristics = true, want false by default")
	}
}

func TestLoad_ShareURLDatabaseID(t *testing.T) {
	t.Setenv("NOTION_TOKEN", "test-token-123")
	t.Setenv("NOTION_DATABASE_ID", "https://www.notion.so/workspace/Inventory-"+rawDatabaseID)
	t.Setenv("NOTION_ROOMS_DATABASE_ID", rawDatabaseID)
	t.Setenv("NOTION_ITEMS_DATABASE_ID", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseID != dashedDatabaseID {
		t.Errorf("DatabaseID = %q, want %q", cfg.DatabaseID, dashedDatabaseID)
	}
	if cfg.RoomsDatabaseID != dashedDatabaseID {
		t.Errorf("RoomsDatabaseID = %q, want %q", cfg.RoomsDatabaseID, dashedDatabaseID)
	}
}

func TestLoad_MissingRequiredValues(t *testing.T) {
	t.Setenv("NOTION_TOKEN", "")
	t.Setenv("NOTION_DATABASE_ID", "")
	t.Setenv("NOTION_ROOMS_DATABASE_ID", "")
	t.Setenv("NOTION_ITEMS_DATABASE_ID", "")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load() succeeded, want validation error")
	}

	// All problems reported at once.
	msg := err.Error()
	if !strings.Contains(msg, "NOTION_TOKEN") {
		t.Errorf("error %q does not mention NOTION_TOKEN", msg)
	}
	if !strings.Contains(msg, "NOTION_DATABASE_ID") {
		t.Errorf("error %q does not mention NOTION_DATABASE_ID", msg)
	}
}

func TestLoad_InvalidDatabaseID(t *testing.T) {
	t.Setenv("NOTION_TOKEN", "test-token-123")
	t.Setenv("NOTION_DATABASE_ID", "not-a-notion-id")
	t.Setenv("NOTION_ROOMS_DATABASE_ID", "")
	t.Setenv("NOTION_ITEMS_DATABASE_ID", "")

	if _, err := Load(""); err == nil {
		t.Fatal("Load() succeeded, want invalid ID error")
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("NOTION_TOKEN", "test-token-123")
	t.Setenv("NOTION_DATABASE_ID", rawDatabaseID)

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() succeeded, want file read error")
	}
}
