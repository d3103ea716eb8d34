package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteSchema(t *testing.T) {
	out := filepath.Join(t.TempDir(), "schemas", "build.json")
	if err := writeSchema(out, buildSchema()); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{"Build Planner Save", "inventories", "equipmentSlots", "selectedCharacter", "attributePoints"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("schema missing %q", want)
		}
	}
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestSchemaKeepsRecordTypesApart(t *testing.T) {
	schema := buildSchema()
	for _, name := range []string{"PlannerRecord", "InventoryRecord", "EquipmentRecord", "ItemRecord"} {
		if _, ok := schema.Definitions[name]; !ok {
			t.Fatalf("missing definition %s", name)
		}
	}
}
