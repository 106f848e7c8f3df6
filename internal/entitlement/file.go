// internal/entitlement/file.go
package entitlement

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// catalogSchema checks the shape of a catalog file. Plan coverage and the
// free-plan baseline are checked afterwards by Catalog.Validate.
const catalogSchema = `{
  "type": "object",
  "required": ["plans"],
  "properties": {
    "plans": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "array",
        "items": {"type": "string", "minLength": 1}
      }
    }
  }
}`

type catalogFile struct {
	Plans map[string][]string `json:"plans"`
}

// LoadCatalogFile reads a JSON catalog of the form
// {"plans": {"free": ["basic_listing", ...], ...}}.
func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalogJSON(data)
}

func ParseCatalogJSON(data []byte) (Catalog, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(catalogSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog is not valid JSON: %v", ErrCatalogIntegrity, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrCatalogIntegrity, strings.Join(msgs, "; "))
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", ErrCatalogIntegrity, err)
	}
	return CatalogFromConfig(file.Plans)
}
