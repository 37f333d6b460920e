/*
Copyright © 2023 the BGCData authors.
This file is part of BGCData.

BGCData is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BGCData is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BGCData.  If not, see <http://www.gnu.org/licenses/>.
*/

package bgcutil

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/spatialmodel/bgcdata"
	"github.com/spatialmodel/bgcdata/providers"
)

func TestParseHint(t *testing.T) {
	keys, hints, err := parseHint("PLOT.BIN_SIZE: list[float] | int | float")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"PLOT", "BIN_SIZE"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("keys: have %v, want %v", keys, want)
	}
	want := []typeHint{{Name: "list", Elem: "float"}, {Name: "int"}, {Name: "float"}}
	if !reflect.DeepEqual(hints, want) {
		t.Errorf("hints: have %v, want %v", hints, want)
	}
	if _, _, err := parseHint("A: complex"); errors.Cause(err) != bgcdata.ErrImpossibleTypeParsing {
		t.Errorf("unknown type: have %v", err)
	}
	if _, _, err := parseHint("A str"); errors.Cause(err) != bgcdata.ErrImpossibleTypeParsing {
		t.Errorf("malformed hint: have %v", err)
	}
}

const testToml = `
#? SAVING_DIR: str
SAVING_DIR = "outputs"
#? BINS: list[float] | float
BINS = [0.5, 1.5]
NO_HINT = true

[PLOT]
#? PLOT.TITLE: str
TITLE = 3
`

func TestTomlParser(t *testing.T) {
	p, err := ParseToml("test.toml", []byte(testToml), true)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"BINS", "NO_HINT", "PLOT", "SAVING_DIR"}; !reflect.DeepEqual(p.Keys(), want) {
		t.Errorf("keys: have %v, want %v", p.Keys(), want)
	}
	v, err := p.Get("PLOT", "TITLE")
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(3) {
		t.Errorf("title: have %#v", v)
	}
	if _, err := p.Get("PLOT", "MISSING"); errors.Cause(err) != bgcdata.ErrInvalidParameterKey {
		t.Errorf("missing key: have %v", err)
	}

	t.Run("copy", func(t *testing.T) {
		v, _ := p.Get("PLOT")
		v.(map[string]interface{})["TITLE"] = "changed"
		if v, _ := p.Get("PLOT", "TITLE"); v != int64(3) {
			t.Errorf("the parser content was changed: %v", v)
		}
	})
	t.Run("check", func(t *testing.T) {
		for _, keys := range [][]string{{"SAVING_DIR"}, {"BINS"}} {
			if err := p.CheckType(keys...); err != nil {
				t.Errorf("%v: %v", keys, err)
			}
		}
		if err := p.CheckType("NO_HINT"); errors.Cause(err) != bgcdata.ErrImpossibleTypeParsing {
			t.Errorf("no hint: have %v", err)
		}
		if err := p.CheckType("PLOT", "TITLE"); errors.Cause(err) != bgcdata.ErrWrongType {
			t.Errorf("wrong type: have %v", err)
		}
		if err := p.CheckHinted(); errors.Cause(err) != bgcdata.ErrWrongType {
			t.Errorf("hinted: have %v", err)
		}
	})
	t.Run("set", func(t *testing.T) {
		if err := p.Set([]string{"PLOT", "TITLE"}, "title"); err != nil {
			t.Fatal(err)
		}
		if err := p.CheckHinted(); err != nil {
			t.Error(err)
		}
		if err := p.Set([]string{"NOPE", "TITLE"}, "title"); errors.Cause(err) != bgcdata.ErrInvalidParameterKey {
			t.Errorf("missing table: have %v", err)
		}
	})
}

func TestTomlParserNoCheck(t *testing.T) {
	p, err := ParseToml("test.toml", []byte(`A = 1`+"\n#? A: str\n"), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.CheckTypes(); err != nil {
		t.Errorf("types should not be checked: %v", err)
	}
}

func TestTypeHintMatches(t *testing.T) {
	tests := []struct {
		hint  typeHint
		value interface{}
		want  bool
	}{
		{typeHint{Name: "str"}, "a", true},
		{typeHint{Name: "str"}, int64(1), false},
		{typeHint{Name: "int"}, int64(1), true},
		{typeHint{Name: "float"}, int64(1), false},
		{typeHint{Name: "bool"}, true, true},
		{typeHint{Name: "list", Elem: "str"}, []interface{}{"a", "b"}, true},
		{typeHint{Name: "list", Elem: "str"}, []interface{}{"a", 1.5}, false},
		{typeHint{Name: "list"}, []interface{}{"a", 1.5}, true},
		{typeHint{Name: "list", Elem: "float"}, 1.5, false},
	}
	for _, test := range tests {
		if have := test.hint.matches(test.value); have != test.want {
			t.Errorf("%s with %#v: have %v, want %v", test.hint, test.value, have, test.want)
		}
	}
}

func TestProvidersParser(t *testing.T) {
	os.Setenv("BGCDATA_TEST_INPUT", "/data")
	defer os.Unsetenv("BGCDATA_TEST_INPUT")
	tp, err := ParseToml("providers.toml", []byte(`[HYCOM]
PATH = "${BGCDATA_TEST_INPUT}/HYCOM"
CATEGORY = "model"
EXCLUDE = ["archv.2020_001_00"]
REGIONAL_GRID_BASENAME = "regional.grid"

[ICES]
PATH = "/ices"
CATEGORY = "in_situ"
EXCLUDE = 12
`), false)
	if err != nil {
		t.Fatal(err)
	}
	p := &ProvidersParser{TomlParser: tp}
	cfg, err := p.Get("HYCOM")
	if err != nil {
		t.Fatal(err)
	}
	want := providers.Config{
		Path:                 "/data/HYCOM",
		Category:             "model",
		Exclude:              []string{"archv.2020_001_00"},
		RegionalGridBasename: "regional.grid",
	}
	diff := pretty.Diff(cfg, want)
	if len(diff) != 0 {
		t.Fatal(diff)
	}
	if _, err = p.Get("ICES"); errors.Cause(err) != bgcdata.ErrWrongType {
		t.Errorf("error should be ErrWrongType but is %v", err)
	}
	if _, err = p.Configs(); errors.Cause(err) != bgcdata.ErrWrongType {
		t.Errorf("error should be ErrWrongType but is %v", err)
	}
}

func TestProvidersParserExclude(t *testing.T) {
	for _, exclude := range []string{`"a.csv"`, `["a.csv", 3]`, `true`} {
		tp, err := ParseToml("providers.toml", []byte("[ICES]\nPATH = \"/ices\"\nEXCLUDE = "+exclude+"\n"), false)
		if err != nil {
			t.Fatal(err)
		}
		if _, err = (&ProvidersParser{TomlParser: tp}).Get("ICES"); errors.Cause(err) != bgcdata.ErrWrongType {
			t.Errorf("EXCLUDE = %s: error should be ErrWrongType but is %v", exclude, err)
		}
	}
	tp, err := ParseToml("providers.toml", []byte("[ICES]\nPATH = \"/ices\"\n"), false)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := (&ProvidersParser{TomlParser: tp}).Get("ICES")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Exclude != nil {
		t.Errorf("missing EXCLUDE should give no exclusion, have %v", cfg.Exclude)
	}
}

func TestLoadDefaultsProvidersHints(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "providers.toml")
	content := `#? ICES.PATH: str
#? ICES.CATEGORY: str
#? ICES.EXCLUDE: list[str]
[ICES]
PATH = "/ices"
CATEGORY = "in_situ"
EXCLUDE = "a.csv"
`
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDefaults("", "", path); errors.Cause(err) != bgcdata.ErrWrongType {
		t.Errorf("error should be ErrWrongType but is %v", err)
	}
}
