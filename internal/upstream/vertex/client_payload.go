package vertex

import (
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/sjson"
)

// applyPayloadOverrides sets each dot-path on the encoded body. Paths are
// applied in sorted order so nested overrides are deterministic; a nil
// value deletes the path.
func applyPayloadOverrides(body []byte, overrides map[string]any) []byte {
	if len(overrides) == 0 {
		return body
	}
	paths := make([]string, 0, len(overrides))
	for p := range overrides {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		value := overrides[path]
		if value == nil {
			body = deleteJSONField(body, path)
			continue
		}
		out, err := sjson.SetBytes(body, path, value)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("payload override skipped")
			continue
		}
		body = out
	}
	return body
}

// deleteJSONField removes a JSON path (dot notation) from a payload using sjson.
func deleteJSONField(body []byte, path string) []byte {
	if strings.TrimSpace(path) == "" {
		return body
	}
	out, err := sjson.DeleteBytes(body, path)
	if err != nil {
		return body
	}
	return out
}
