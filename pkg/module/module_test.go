package module

import "testing"

func TestLoad_SingleModule(t *testing.T) {
	g, err := Load("main", "cell f() -> Int\n  return 1\n", func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(g.Programs) != 1 {
		t.Fatalf("got %d programs, want 1", len(g.Programs))
	}
}

func TestLoad_TransitiveImport(t *testing.T) {
	sources := map[string]string{
		"main": "import \"util\"\ncell f() -> Int\n  return 1\n",
		"util": "cell g() -> Int\n  return 2\n",
	}

	g, err := Load("main", sources["main"], func(name string) (string, bool) {
		s, ok := sources[name]
		return s, ok
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(g.Programs) != 2 {
		t.Fatalf("got %d programs, want 2: %v", len(g.Programs), g.Order)
	}
}

func TestLoad_CircularImport(t *testing.T) {
	sources := map[string]string{
		"a": "import \"b\"\n",
		"b": "import \"a\"\n",
	}

	_, err := Load("a", sources["a"], func(name string) (string, bool) {
		s, ok := sources[name]
		return s, ok
	})

	if err == nil {
		t.Fatal("expected a circular import error")
	}
}

func TestLoad_MissingImport(t *testing.T) {
	_, err := Load("main", "import \"missing\"\n", func(string) (string, bool) { return "", false })
	if err == nil {
		t.Fatal("expected an error for a missing import")
	}
}
