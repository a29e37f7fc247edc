package loadorder

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePluginList(t *testing.T) {
	input := "Skyrim.esm : 1\nUnused.esp : 0\nUpdate.esm : 1"
	list, err := ParsePluginList(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(list), list)
	}
	assert.Equal(t, "Skyrim.esm", list[0].Name)
	assert.Equal(t, 0, *list[0].Index)
	assert.Equal(t, "Update.esm", list[1].Name)
	assert.Equal(t, 1, *list[1].Index)
	assert.True(t, list[0].Enabled)
}

func TestParsePluginListSkipsBlanksAndComments(t *testing.T) {
	input := strings.Join([]string{
		"",
		"# load order exported by mod manager",
		"   ",
		"Skyrim.esm : 1",
		"# disabled below",
		"Dawnguard.esm : 1",
	}, "\n")
	list, err := ParsePluginList(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, list, 2)
}

func TestParsePluginListTrimsWhitespace(t *testing.T) {
	list, err := ParsePluginList(strings.NewReader("  SkyUI_SE.esp  :  1  \n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d entries, want 1", len(list))
	}
	assert.Equal(t, "SkyUI_SE.esp", list[0].Name)
}

func TestParsePluginListOddFlags(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		count int
	}{
		{"empty flag", "Mod.esp :", 0},
		{"no delimiter", "Mod.esp", 0},
		{"flag not one", "Mod.esp : yes", 0},
		{"flag one", "Mod.esp : 1", 1},
		{"colon in name splits on first", "Mod: The Sequel.esp : 1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := ParsePluginList(strings.NewReader(tt.line))
			if err != nil {
				t.Fatal(err)
			}
			assert.Len(t, list, tt.count)
		})
	}
}

func TestParsePluginListEmptyInput(t *testing.T) {
	list, err := ParsePluginList(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	assert.Empty(t, list)

	// an empty load order is a valid, submittable result
	js, err := list.ToJSON()
	assert.NoError(t, err)
	assert.Equal(t, "[]", js)
}

func TestModListJSON(t *testing.T) {
	list := ModList{
		ModEntry{Name: "Skyrim.esm", Enabled: true, FileHash: "a1b2c3d4e5f67890", FileSize: 1000}.WithIndex(0),
		ModEntry{Name: "SkyUI_SE.esp", Enabled: true, Version: "5.2.1"}.WithIndex(1),
	}
	js, err := list.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	assert.Contains(t, js, `"fileHash":"a1b2c3d4e5f67890"`)
	assert.Contains(t, js, `"version":"5.2.1"`)
	assert.Contains(t, js, `"index":0`)

	// must be a syntactically valid JSON array
	var arr []map[string]any
	assert.NoError(t, json.Unmarshal([]byte(js), &arr))
	assert.Len(t, arr, 2)

	back, err := FromJSON(js)
	assert.NoError(t, err)
	assert.Equal(t, list, back)
}

func TestModEntryJSONOmitsEmptyOptionals(t *testing.T) {
	b, err := json.Marshal(ModEntry{Name: "Test.esp", Enabled: true})
	if err != nil {
		t.Fatal(err)
	}
	js := string(b)
	assert.NotContains(t, js, "index")
	assert.NotContains(t, js, "fileHash")
	assert.NotContains(t, js, "fileSize")
	assert.NotContains(t, js, "version")
}
