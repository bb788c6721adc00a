package library

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/starford/scalesmith/internal/scale"
	"github.com/starford/scalesmith/internal/store"
)

const pentatonicYAML = `families:
  - name: Pentatonic
    intervals: [2, 2, 3, 2, 3]
    modes: [Major Pentatonic, Suspended, Blues Minor, Blues Major, Minor Pentatonic]
`

const savedJSON = `{
  "Whole Tone Pair": [[2, 2, 2, 2, 2, 2], ["Whole Tone"]],
  "Augmented Pair": [[3, 1, 3, 1, 3, 1], ["Augmented", "Inverted Augmented"]]
}`

func tempLibrary(t *testing.T) *FS {
	t.Helper()
	lib, err := NewFS(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return lib
}

func testDB(t *testing.T) *store.DB {
	t.Helper()
	f, err := os.CreateTemp("", "scalesmith-library-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })
	db, err := store.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecode_FamiliesYAML(t *testing.T) {
	fams, err := Decode("p.yaml", []byte(pentatonicYAML))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(fams) != 1 || fams[0].Name != "Pentatonic" || len(fams[0].Modes) != 5 {
		t.Errorf("families = %+v", fams)
	}
}

func TestDecode_SavedMapKeepsOrder(t *testing.T) {
	fams, err := Decode("saved.json", []byte(savedJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(fams) != 2 || fams[0].Name != "Whole Tone Pair" || fams[1].Name != "Augmented Pair" {
		t.Fatalf("families = %+v", fams)
	}
	if !reflect.DeepEqual(fams[1].Modes, []string{"Augmented", "Inverted Augmented"}) {
		t.Errorf("modes = %v", fams[1].Modes)
	}
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"not a mapping": "- a\n- b\n",
		"bad sum":       "families:\n  - name: X\n    intervals: [2, 2]\n    modes: [a]\n",
		"short pair":    `{"X": [[12]]}`,
		"duplicate":     "families:\n  - {name: X, intervals: [12], modes: [a]}\n  - {name: X, intervals: [12], modes: [a]}\n",
		"syntax":        "families: [",
	}
	for name, in := range cases {
		if _, err := Decode("f.yaml", []byte(in)); !errors.Is(err, ErrFormat) {
			t.Errorf("%s: err = %v, want ErrFormat", name, err)
		}
	}
	if fams, err := Decode("empty.yaml", []byte("\n")); err != nil || fams != nil {
		t.Errorf("empty file = %v, %v", fams, err)
	}
}

func TestEncodeYAML_RoundTrip(t *testing.T) {
	in := scale.DefaultFamilies()[:3]
	data, err := EncodeYAML(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode("export.yaml", data)
	if err != nil {
		t.Fatalf("Decode: %v\n%s", err, data)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n%s", data)
	}
}

func TestEncodeJSON_RoundTrip(t *testing.T) {
	in, err := Decode("saved.json", []byte(savedJSON))
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode("saved.json", in)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string][2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("not a saved-scales map: %v\n%s", err, data)
	}
	out, err := Decode("saved.json", data)
	if err != nil {
		t.Fatalf("Decode: %v\n%s", err, data)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n%s", data)
	}

	if data, _ := Encode("custom/x.yaml", in); json.Valid(data) {
		t.Errorf("yaml path encoded as JSON:\n%s", data)
	}
}

func TestFileName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Pentatonic", filepath.Join("custom", "pentatonic.yaml")},
		{"Ionian ♯2 ♯5 / Mine!", filepath.Join("custom", "ionian-2-5-mine.yaml")},
		{"♯♯", filepath.Join("custom", "family.yaml")},
	}
	for _, c := range cases {
		if got := FileName(c.in); got != c.want {
			t.Errorf("FileName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFS_WriteReadDelete(t *testing.T) {
	lib := tempLibrary(t)
	if err := lib.Write("a/b/p.yaml", []byte(pentatonicYAML)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := lib.Read("a/b/p.yaml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != pentatonicYAML {
		t.Errorf("content = %q", got)
	}
	if err := lib.Delete("a/b/p.yaml"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := lib.Read("a/b/p.yaml"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestFS_PathTraversal(t *testing.T) {
	lib := tempLibrary(t)
	for _, p := range []string{"../escape.yaml", "/etc/passwd", "a/../../x.yaml", ""} {
		if err := lib.Write(p, []byte("x")); err == nil {
			t.Errorf("Write(%q) should fail", p)
		}
	}
}

func TestFS_ListHonoursInclude(t *testing.T) {
	dir := t.TempDir()
	lib, err := NewFS(dir, []string{"scales/**/*.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	_ = lib.Write("scales/x/p.yaml", []byte(pentatonicYAML))
	_ = lib.Write("other/p.yaml", []byte(pentatonicYAML))
	_ = lib.Write("scales/notes.txt", []byte("x"))

	metas, err := lib.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 1 || metas[0].Path != filepath.Join("scales", "x", "p.yaml") {
		t.Errorf("List = %+v", metas)
	}
	if metas[0].Checksum != Checksum([]byte(pentatonicYAML)) {
		t.Error("checksum mismatch")
	}
	if _, err := NewFS(dir, []string{"[bad"}); err == nil {
		t.Error("invalid pattern should fail")
	}
}

func TestSync_LoadsAndDropsStale(t *testing.T) {
	lib := tempLibrary(t)
	db := testDB(t)
	_ = lib.Write("p.yaml", []byte(pentatonicYAML))
	_ = lib.Write("saved.json", []byte(savedJSON))
	_ = lib.Write("broken.yaml", []byte("families: ["))

	var steps int
	if err := SyncWithProgress(db, lib, quietLogger(), func(string) { steps++ }); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if steps != 3 {
		t.Errorf("steps = %d, want 3", steps)
	}
	rows, _ := db.List()
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	_ = lib.Delete("saved.json")
	if err := Sync(db, lib, quietLogger()); err != nil {
		t.Fatal(err)
	}
	rows, _ = db.List()
	if len(rows) != 1 || rows[0].Name != "Pentatonic" {
		t.Errorf("after delete rows = %+v", rows)
	}
}

func TestLoadFile_ReportsChanges(t *testing.T) {
	db := testDB(t)
	changes, err := loadFile(db, "s.json", []byte(savedJSON))
	if err != nil {
		t.Fatal(err)
	}
	want := []change{{KindCreated, "Whole Tone Pair"}, {KindCreated, "Augmented Pair"}}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("first load = %+v", changes)
	}
	changes, err = loadFile(db, "s.json", []byte(`{"Augmented Pair": [[3, 1, 3, 1, 3, 1], ["Augmented"]]}`))
	if err != nil {
		t.Fatal(err)
	}
	want = []change{{KindUpdated, "Augmented Pair"}, {KindDeleted, "Whole Tone Pair"}}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("second load = %+v", changes)
	}
}
