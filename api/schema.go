package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// maxBodyBytes bounds request bodies; every payload is a handful of short strings.
const maxBodyBytes = 64 << 10

// bodySchemas holds the compiled request schemas keyed by file stem.
type bodySchemas map[string]*jsonschema.Schema

func loadSchemas() (bodySchemas, error) {
	out := bodySchemas{}
	for _, name := range []string{"room", "member", "entry"} {
		b, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		out[name] = rs
	}
	return out, nil
}

// decode reads the request body, checks it against the named schema and
// unmarshals it into dst. On failure the 400 response is already written.
func (s bodySchemas) decode(ctx context.Context, w http.ResponseWriter, r *http.Request, name string, dst any) bool {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeBadRequest(w, "invalid body")
		return false
	}
	if !json.Valid(b) {
		writeBadRequest(w, "invalid json")
		return false
	}

	if rs, ok := s[name]; ok {
		keyErrs, err := rs.ValidateBytes(ctx, b)
		if err != nil {
			writeBadRequest(w, "invalid json")
			return false
		}
		if len(keyErrs) > 0 {
			details := make([]string, 0, len(keyErrs))
			for _, ke := range keyErrs {
				details = append(details, fmt.Sprintf("%s: %s", ke.PropertyPath, ke.Message))
			}
			writeBadRequest(w, "validation failed", details...)
			return false
		}
	}

	if err := json.Unmarshal(b, dst); err != nil {
		writeBadRequest(w, "invalid json")
		return false
	}
	return true
}
