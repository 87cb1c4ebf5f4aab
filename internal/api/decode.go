// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ManuGH/scenecue/internal/domain/session/model"
)

// maxJSONBody bounds command and definition request bodies.
const maxJSONBody = 1 << 20

// decodeJSON reads one JSON object from the request body. Unknown fields are
// ignored so older panels keep working against newer servers.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", model.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON body: %v", model.ErrInvalidInput, err)
	}
	return nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func stringOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
