//go:build !integration

package console

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type sampleSettings struct {
	Checks   bool          `console:"header:Run Checks"`
	Level    string        `console:"header:Log Level"`
	Patterns []string      `console:"header:Ignore Patterns,default:None"`
	Timeout  time.Duration `console:"header:Timeout"`
	Token    string        `console:"-"`
	Note     string        `console:"omitempty"`
	Long     string        `console:"maxlen:8"`
	hidden   string
}

func TestSettingsRows(t *testing.T) {
	s := sampleSettings{
		Level:   "warning",
		Timeout: 1500 * time.Millisecond,
		Token:   "secret",
		Long:    "abcdefghijkl",
		hidden:  "x",
	}

	got := settingsRows(reflect.ValueOf(s))
	assert.Equal(t, [][]string{
		{"Run Checks", "false"},
		{"Log Level", "warning"},
		{"Ignore Patterns", "None"},
		{"Timeout", "1.5s"},
		{"Long", "abcde..."},
	}, got)

	s.Patterns = []string{"legacy-*", "*/README.md"}
	got = settingsRows(reflect.ValueOf(s))
	assert.Equal(t, []string{"Ignore Patterns", "legacy-*, */README.md"}, got[2])
}

func TestRenderSettings(t *testing.T) {
	plainOutput(t)

	out := RenderSettings("Linter Configuration", &sampleSettings{Level: "info"})
	assert.Contains(t, out, "Linter Configuration")
	assert.Contains(t, out, "Setting")
	assert.Contains(t, out, "Log Level")
	assert.NotContains(t, out, "Token")

	assert.Empty(t, RenderSettings("nothing", 42))
	assert.Empty(t, RenderSettings("nil", (*sampleSettings)(nil)))
}

func TestParseSettingTag(t *testing.T) {
	typ := reflect.TypeFor[sampleSettings]()

	_, ok := parseSettingTag(typ.Field(4))
	assert.False(t, ok, "console:\"-\" skips the field")

	tag, ok := parseSettingTag(typ.Field(2))
	assert.True(t, ok)
	assert.Equal(t, settingTag{name: "Ignore Patterns", fallback: "None"}, tag)

	tag, _ = parseSettingTag(typ.Field(5))
	assert.Equal(t, settingTag{name: "Note", omitEmpty: true}, tag, "the field name is the default header")

	tag, _ = parseSettingTag(typ.Field(6))
	assert.Equal(t, 8, tag.maxLen)
}

func TestIsEmptySetting(t *testing.T) {
	assert.False(t, isEmptySetting(reflect.ValueOf(false)))
	assert.True(t, isEmptySetting(reflect.ValueOf("")))
	assert.True(t, isEmptySetting(reflect.ValueOf([]string{})))
	assert.True(t, isEmptySetting(reflect.ValueOf(time.Duration(0))))
	assert.False(t, isEmptySetting(reflect.ValueOf(3)))
}
