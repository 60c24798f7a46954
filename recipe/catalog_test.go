package recipe

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func testRows() []Row {
	return []Row{
		{ID: 1, Name: "Dig Resource", Algorithm: "select(any,1);locateResource(BUFFER);mine();wait(5)"},
		{ID: 2, Name: "Explore", Algorithm: "select(any,1);explore();wait(10)"},
		{ID: 3, Name: "mate", Algorithm: "select(any,2);mate();wait(20)"},
		{ID: 10, Name: "Build Hut", Algorithm: "alterResource(wood,-5);addBuilding(hut)", Requirements: "resource(wood,5);"},
	}
}

func TestCatalogFind(t *testing.T) {
	c, err := NewCatalog(testRows())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}

	if r, ok := c.Find(10); !ok || r.Name != "Build Hut" {
		t.Errorf("Find(10) = %v, %v", r, ok)
	}
	if r, ok := c.FindByName("Explore"); !ok || r.ID != 2 {
		t.Errorf("FindByName(Explore) = %v, %v", r, ok)
	}
	if _, ok := c.Find(99); ok {
		t.Error("Find(99) should miss")
	}
	if _, ok := c.FindByName("explore"); ok {
		t.Error("FindByName is case sensitive")
	}

	all := c.All()
	for i, want := range []int{1, 2, 3, 10} {
		if all[i].ID != want {
			t.Errorf("All()[%d].ID = %d, want %d", i, all[i].ID, want)
		}
	}
}

func TestCatalogRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		extra Row
		field string
	}{
		{"duplicate id", Row{ID: 2, Name: "Other"}, "id"},
		{"duplicate name", Row{ID: 50, Name: "mate"}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(append(testRows(), tt.extra))
			if !errors.Is(err, ErrDuplicateRecipe) {
				t.Fatalf("error = %v, want ErrDuplicateRecipe", err)
			}
			var loadErr *LoadError
			if errors.As(err, &loadErr) && loadErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", loadErr.Field, tt.field)
			}
		})
	}
}

func TestCatalogLoadAbortsOnBadVocabulary(t *testing.T) {
	rows := append(testRows(), Row{ID: 11, Name: "Bad", Requirements: "resource(wood,1);magic(x,1);"})
	c, err := NewCatalog(rows)
	if err == nil {
		t.Fatal("NewCatalog() should fail")
	}
	if c != nil {
		t.Error("no partial catalog may be returned")
	}
}

func TestCatalogSuggest(t *testing.T) {
	c, err := NewCatalog(testRows())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	tests := []struct {
		miss string
		want string
	}{
		{"Exploer", "Explore"},
		{"dig resource", "Dig Resource"},
		{"Build Huts", "Build Hut"},
		{"Launch Rocket", ""},
	}
	for _, tt := range tests {
		if got := c.Suggest(tt.miss); got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.miss, got, tt.want)
		}
	}
}

func TestCatalogConcurrentReads(t *testing.T) {
	c, err := LoadCSV(strings.NewReader("id,name,persistent,uniqueness,algorithm,requirements\n2,Explore,0,0,explore(),\n"))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, ok := c.FindByName("Explore"); !ok {
					t.Error("FindByName(Explore) missed")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestRecipeDump(t *testing.T) {
	r, err := Row{ID: 12, Name: "Odd", Algorithm: "dance();wait(1)", Requirements: "memory(mine,1);"}.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	var sb strings.Builder
	r.Dump(&sb)
	out := sb.String()
	for _, want := range []string{"Recipe 12: Odd", "1) dance()  [unknown opcode]", "2) wait(1)", "1) memory(mine,1)", "Unique: false"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump() missing %q in:\n%s", want, out)
		}
	}
}
