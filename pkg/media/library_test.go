package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func writeTree(t *testing.T, root string, paths []string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"ocean/hor/a.mp4",
		"ocean/hor/b.mov",
		"ocean/hor/c.mkv",
		"ocean/hor/notes.txt", // ignored extension
		"ocean/hor_text/t1.mp4",
		// forest misses the text pool entirely
		"forest/hor/a.mp4",
		"forest/hor/b.mp4",
		"forest/hor/c.mp4",
		// desert has too few normal clips
		"desert/hor/a.mp4",
		"desert/hor_text/t.mp4",
	})

	lib, err := Scan(root, "hor", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	if got := lib.Categories(); len(got) != 1 || got[0] != "ocean" {
		t.Fatalf("Categories() = %v, want [ocean]", got)
	}

	pool, ok := lib.PoolFor("ocean")
	if !ok {
		t.Fatal("ocean pool missing")
	}
	if len(pool.Normal) != 3 || len(pool.Text) != 1 {
		t.Fatalf("ocean pool %d/%d, want 3 normal, 1 text", len(pool.Normal), len(pool.Text))
	}
	// Deterministic, sorted order so every boot sees the same pools.
	if !strings.HasSuffix(string(pool.Normal[0]), "a.mp4") {
		t.Fatalf("normal pool not sorted: %v", pool.Normal)
	}

	if _, ok := lib.PoolFor("forest"); ok {
		t.Fatal("forest usable without a text pool")
	}
	if _, ok := lib.PoolFor("desert"); ok {
		t.Fatal("desert usable with 1 normal clip")
	}
}

func TestScanVerticalUsesRotatedDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"ocean/ver_rotated/a.mp4",
		"ocean/ver_rotated/b.mp4",
		"ocean/ver_rotated/c.mp4",
		"ocean/ver_rotated_text/t.mp4",
		"ocean/hor/ignored.mp4",
	})

	lib, err := Scan(root, "ver", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	pool, ok := lib.PoolFor("ocean")
	if !ok {
		t.Fatal("ocean pool missing for ver orientation")
	}
	for _, c := range pool.Normal {
		if !strings.Contains(string(c), "ver_rotated") {
			t.Fatalf("ver orientation picked clip %q outside ver_rotated", c)
		}
	}
}

func TestScanUnknownOrientation(t *testing.T) {
	if _, err := Scan(t.TempDir(), "diagonal", zap.NewNop()); err == nil {
		t.Fatal("unknown orientation accepted")
	}
}

func TestRotation(t *testing.T) {
	cases := map[string]int{
		"hor": 0, "ver": 0, "inverted_hor": 180, "inverted_ver": 180,
	}
	for o, want := range cases {
		got, err := Rotation(o)
		if err != nil || got != want {
			t.Errorf("Rotation(%q) = %d, %v; want %d", o, got, err, want)
		}
	}
	if _, err := Rotation("upside"); err == nil {
		t.Error("Rotation accepted an unknown orientation")
	}
}
