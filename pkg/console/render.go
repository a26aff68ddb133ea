package console

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/getumbrel/umbrel-linter/pkg/logger"
)

var renderLog = logger.New("console:render")

// RenderSettings renders the exported fields of a struct as a two column
// Setting/Value table.
//
// Struct tags:
//   - `console:"header:Log Level"` - Sets the setting name
//   - `console:"default:None"` - Shown instead of an empty value
//   - `console:"maxlen:40"` - Truncates long values
//   - `console:"omitempty"` - Skips empty values
//   - `console:"-"` - Skips the field entirely
func RenderSettings(title string, v any) string {
	renderLog.Printf("Rendering settings: type=%T", v)
	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return ""
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return ""
	}
	return RenderTable(TableConfig{
		Title:   title,
		Headers: []string{"Setting", "Value"},
		Rows:    settingsRows(val),
	})
}

func settingsRows(val reflect.Value) [][]string {
	typ := val.Type()
	var rows [][]string
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		tag, ok := parseSettingTag(field)
		if !ok {
			continue
		}
		value := val.Field(i)
		if tag.omitEmpty && isEmptySetting(value) {
			continue
		}
		rows = append(rows, []string{tag.name, tag.render(value)})
	}
	renderLog.Printf("Rendered %d settings of %s", len(rows), typ.Name())
	return rows
}

// settingTag is a parsed `console` struct tag.
type settingTag struct {
	name      string
	fallback  string
	maxLen    int
	omitEmpty bool
}

// parseSettingTag reads the console tag of field. ok is false for `console:"-"`.
func parseSettingTag(field reflect.StructField) (tag settingTag, ok bool) {
	raw := field.Tag.Get("console")
	if raw == "-" {
		return settingTag{}, false
	}
	tag.name = field.Name
	for part := range strings.SplitSeq(raw, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(part), ":")
		switch key {
		case "omitempty":
			tag.omitEmpty = true
		case "header":
			tag.name = value
		case "default":
			tag.fallback = value
		case "maxlen":
			if n, err := strconv.Atoi(value); err == nil {
				tag.maxLen = n
			}
		}
	}
	return tag, true
}

// render formats value, applying the fallback and length limit.
func (t settingTag) render(value reflect.Value) string {
	text := settingValue(value)
	if t.fallback != "" && isEmptySetting(value) {
		text = t.fallback
	}
	if t.maxLen > 0 && len(text) > t.maxLen {
		if t.maxLen <= 3 {
			return text[:t.maxLen]
		}
		return text[:t.maxLen-3] + "..."
	}
	return text
}

// isEmptySetting reports whether value holds nothing worth showing. A false
// bool is a real setting, so bools are never empty.
func isEmptySetting(value reflect.Value) bool {
	if !value.IsValid() {
		return true
	}
	switch value.Kind() {
	case reflect.Bool:
		return false
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return value.Len() == 0
	}
	return value.IsZero()
}

// settingValue renders value for display. Empty strings and lists show as "-".
func settingValue(value reflect.Value) string {
	for value.Kind() == reflect.Ptr || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return "-"
		}
		value = value.Elem()
	}
	if !value.IsValid() {
		return "-"
	}
	if d, ok := value.Interface().(time.Duration); ok {
		return d.String()
	}

	switch value.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(value.Bool())
	case reflect.String:
		if value.Len() == 0 {
			return "-"
		}
		return value.String()
	case reflect.Slice, reflect.Array:
		if value.Len() == 0 {
			return "-"
		}
		items := make([]string, value.Len())
		for i := range items {
			items[i] = settingValue(value.Index(i))
		}
		return strings.Join(items, ", ")
	}
	return fmt.Sprint(value.Interface())
}
