package scope

import (
	"encoding/json"
	"fmt"
	"strings"

	oerrors "github.com/vango-dev/orbit/internal/errors"
)

// ParseProps decodes a props payload. The result is always a usable object:
// an empty payload, a JSON value that is not an object, or malformed JSON
// all yield an empty map. Only the last two return an error.
func ParseProps(payload string) (map[string]any, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return map[string]any{}, nil
	}

	var v any
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return map[string]any{}, oerrors.New("E030").Wrap(err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		if v == nil {
			return map[string]any{}, nil
		}
		return map[string]any{}, oerrors.New("E030").WithDetail(fmt.Sprintf("props payload is a %T, not an object", v))
	}
	return obj, nil
}

// props reads the root's props attribute. A value that looks like JSON is
// parsed inline; anything else names the id of a data island whose text is
// the payload.
func (s *Scope) props() map[string]any {
	source, ok := s.root.Attr(s.vocab.ScopeProps)
	source = strings.TrimSpace(source)
	if !ok || source == "" {
		return map[string]any{}
	}

	payload := source
	if !looksLikeJSON(source) {
		island := s.doc.ElementByID(source)
		if island == nil {
			s.logger.Warn("props island not found", "id", source)
			return map[string]any{}
		}
		payload = island.Text()
	}

	props, err := ParseProps(payload)
	if err != nil {
		s.metrics.Diagnostic(oerrors.Code(err))
		s.logger.Warn("malformed props", "error", err)
	}
	return props
}

func looksLikeJSON(s string) bool {
	switch s[0] {
	case '{', '[', '"':
		return true
	}
	return false
}
