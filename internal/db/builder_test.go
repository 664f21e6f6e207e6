package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_FullSchema(t *testing.T) {
	def, err := NewIndex("kindred:post:idx").
		Prefix("kindred:post:").
		TagWithOpts("tags", ",", true).
		Tag("series").
		Numeric("series_order").
		Text("title").
		VectorHNSW("__vector", 1536, DistanceCosine, 32, 400).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "kindred:post:idx" {
		t.Errorf("name: got %q", def.Name)
	}
	if len(def.Fields) != 5 {
		t.Fatalf("expected 5 fields, got %d", len(def.Fields))
	}
	vec := def.Fields[4]
	if vec.Type != IndexFieldVector || vec.VectorAlgo != VectorHNSW {
		t.Errorf("vector field: %+v", vec)
	}
	if vec.VectorM != 32 || vec.VectorEFConstruct != 400 {
		t.Errorf("hnsw params: %+v", vec)
	}
}

func TestIndexBuilder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
	}{
		{"empty name", NewIndex("").Tag("a")},
		{"invalid name", NewIndex("bad name!").Tag("a")},
		{"no fields", NewIndex("idx")},
		{"duplicate field", NewIndex("idx").Tag("a").Numeric("a")},
		{"vector without dim", NewIndex("idx").VectorFlat("v", 0, DistanceCosine)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.builder.Build(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIndexBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewIndex("").MustBuild()
}

func TestIndexDefinition_String(t *testing.T) {
	def := NewIndex("idx").Prefix("p:").Tag("tags").VectorFlat("__vector", 8, DistanceCosine).MustBuild()
	s := def.String()
	for _, want := range []string{"FT.CREATE", "ON HASH", "PREFIX p:", "tags TAG", "VECTOR FLAT"} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in %q", want, s)
		}
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"kindred:post:idx", "a-b_c", "ABC123"}
	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	invalid := []string{"", "has space", "semi;colon", "star*"}
	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
