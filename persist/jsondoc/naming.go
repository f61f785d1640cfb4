package jsondoc

import (
	"strings"
	"sync"

	"github.com/huandu/xstrings"
	jsoniter "github.com/json-iterator/go"
)

// snakeCase names object members after Go fields converted to snake_case.
// Explicit names from `json` tags are kept.
type snakeCase struct {
	jsoniter.DummyExtension
}

func (snakeCase) UpdateStructDescriptor(sd *jsoniter.StructDescriptor) {
	for _, b := range sd.Fields {
		if name, _, _ := strings.Cut(b.Field.Tag().Get("json"), ","); len(name) > 0 {
			continue
		}
		name := xstrings.ToSnakeCase(b.Field.Name())
		b.ToNames = []string{name}
		b.FromNames = []string{name}
	}
}

var apis sync.Map // indent -> jsoniter.API

// apiFor returns codec configuration for given indentation, configurations
// are shared since they cache per type encoders.
func apiFor(indent int) jsoniter.API {
	if api, ok := apis.Load(indent); ok {
		return api.(jsoniter.API)
	}
	api := jsoniter.Config{
		IndentionStep:          indent,
		EscapeHTML:             false,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
	}.Froze()
	api.RegisterExtension(&snakeCase{})
	actual, _ := apis.LoadOrStore(indent, api)
	return actual.(jsoniter.API)
}
