package analysis

import "testing"

func TestRegistry_BuiltIns(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get(CharType); err != nil {
		t.Errorf("chartype should be registered: %v", err)
	}
	if _, err := r.Get("missing"); err == nil {
		t.Error("expected error for unknown tokenizer")
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	tok := NewTokenizer(SegmenterFunc(func(s string) []string { return []string{s} }))

	if err := r.Register("keyword", tok); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := r.Register("keyword", tok); err == nil {
		t.Error("expected duplicate registration error")
	}

	got, err := r.Get("keyword")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != tok {
		t.Error("Get returned a different tokenizer")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != CharType || names[1] != "keyword" {
		t.Errorf("unexpected names %v", names)
	}
}
