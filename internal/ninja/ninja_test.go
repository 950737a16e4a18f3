package ninja

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestParseDepFile(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DepFile
		wantErr bool
	}{
		{
			name:  "stamp and deps",
			input: "build.ninja: ../../BUILD.gn ../../args.gni\n",
			want: DepFile{
				Stamp: "build.ninja",
				Deps:  []string{"../../BUILD.gn", "../../args.gni"},
			},
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "stamp only",
			input:   "build.ninja:\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDepFile([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// writeBuildDir lays out a build directory with a stamp file, three
// dependencies and a dep file listing them, all stamped at base time.
func writeBuildDir(t *testing.T, base time.Time) string {
	t.Helper()
	buildDir := t.TempDir()

	files := []string{"build.ninja", "dep1.gn", "dep2.gni", "dep3.gni"}
	for _, name := range files {
		path := filepath.Join(buildDir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, base, base); err != nil {
			t.Fatal(err)
		}
	}

	depData := "build.ninja: dep1.gn dep2.gni dep3.gni\n"
	if err := os.WriteFile(filepath.Join(buildDir, "build.ninja.d"), []byte(depData), 0o644); err != nil {
		t.Fatal(err)
	}
	return buildDir
}

func TestPlanIsStale(t *testing.T) {
	base := time.Now().Add(-1 * time.Hour)

	t.Run("fresh when all deps at or before stamp", func(t *testing.T) {
		buildDir := writeBuildDir(t, base)
		stale, err := PlanIsStale(buildDir)
		if err != nil {
			t.Fatal(err)
		}
		if stale {
			t.Error("plan reported stale with no newer deps")
		}
	})

	t.Run("stale when one dep newer than stamp", func(t *testing.T) {
		buildDir := writeBuildDir(t, base)
		newer := base.Add(10 * time.Minute)
		if err := os.Chtimes(filepath.Join(buildDir, "dep2.gni"), newer, newer); err != nil {
			t.Fatal(err)
		}
		stale, err := PlanIsStale(buildDir)
		if err != nil {
			t.Fatal(err)
		}
		if !stale {
			t.Error("plan reported fresh with a newer dep")
		}
	})

	t.Run("stale when a dep is missing", func(t *testing.T) {
		buildDir := writeBuildDir(t, base)
		if err := os.Remove(filepath.Join(buildDir, "dep3.gni")); err != nil {
			t.Fatal(err)
		}
		stale, err := PlanIsStale(buildDir)
		if err != nil {
			t.Fatal(err)
		}
		if !stale {
			t.Error("plan reported fresh with a missing dep")
		}
	})

	t.Run("not stale without dep file", func(t *testing.T) {
		stale, err := PlanIsStale(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		if stale {
			t.Error("missing dep file must not report stale")
		}
	})

	t.Run("malformed dep file is an error", func(t *testing.T) {
		buildDir := t.TempDir()
		if err := os.WriteFile(filepath.Join(buildDir, "build.ninja.d"), []byte("build.ninja:\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := PlanIsStale(buildDir); err == nil {
			t.Error("expected error for malformed dep file")
		}
	})
}
