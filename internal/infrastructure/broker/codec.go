package broker

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var ErrMalformedPayload = errors.New("broker: malformed item id payload")

// itemIDKeys are the object fields an id may arrive under, in lookup order.
var itemIDKeys = []string{"itemId", "item_id", "spuId", "id"}

// DecodeItemID reads an item id published as a bare JSON number, a quoted number,
// null, or an object carrying the id. Empty and null payloads yield a nil id.
func DecodeItemID(payload []byte) (*int64, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	var rest any
	if err := dec.Decode(&rest); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after id", ErrMalformedPayload)
	}
	return idFromValue(v, true)
}

func idFromValue(v any, allowObject bool) (*int64, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		return parseID(string(x))
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, nil
		}
		return parseID(strings.TrimSpace(x))
	case map[string]any:
		if !allowObject {
			break
		}
		for _, k := range itemIDKeys {
			if raw, ok := x[k]; ok {
				return idFromValue(raw, false)
			}
		}
		return nil, nil
	}
	return nil, fmt.Errorf("%w: unexpected %T", ErrMalformedPayload, v)
}

// parseID accepts positive ids only, the same rule the admin API applies.
func parseID(s string) (*int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedPayload, s)
	}
	return &id, nil
}

func EncodeItemID(id int64) []byte {
	b, _ := json.Marshal(id)
	return b
}
