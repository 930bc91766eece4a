// Copyright 2026 The Firedoc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package firestore

// Decoding of Firestore's REST value encoding into plain Go values.
//
// On the wire each value is a JSON object with a single member naming its
// type, for example {"integerValue": "42"} or
// {"mapValue": {"fields": {"x": {"stringValue": "y"}}}}.

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// A Tag names the type of a wire value.
type Tag string

// The tags with a decoding rule. Values with any other tag decode to nil.
const (
	StringTag  Tag = "stringValue"
	IntegerTag Tag = "integerValue"
	BooleanTag Tag = "booleanValue"
	MapTag     Tag = "mapValue"
	ArrayTag   Tag = "arrayValue"
)

// DecodeDocument decodes the "fields" member of a Firestore document, a map
// from field name to wire value, into a map from field name to Go value.
//
// Decoded values are string, int64, bool, map[string]interface{} (for map
// values) and []interface{} (for array values, in wire order). A value whose
// tag has no decoding rule decodes to nil.
func DecodeDocument(fields map[string]interface{}) map[string]interface{} {
	return decodeFields(fields, 1, 0)
}

// DecodeValue decodes a single wire value by the same rules as DecodeDocument.
func DecodeValue(v interface{}) interface{} {
	return decodeValue(v, 1, 0)
}

// decodeFields decodes a field map whose values sit at the given depth.
// A positive maxDepth replaces values nested deeper than maxDepth with nil.
func decodeFields(fields map[string]interface{}, depth, maxDepth int) map[string]interface{} {
	doc := make(map[string]interface{}, len(fields))
	for name, v := range fields {
		doc[name] = decodeValue(v, depth, maxDepth)
	}
	return doc
}

func decodeValue(v interface{}, depth, maxDepth int) interface{} {
	if maxDepth > 0 && depth > maxDepth {
		return nil
	}
	tag, payload, ok := tagOf(v)
	if !ok {
		return nil
	}
	switch tag {
	case StringTag:
		switch p := payload.(type) {
		case string:
			return p
		case nil:
			return ""
		default:
			return fmt.Sprint(p)
		}
	case IntegerTag:
		i, ok := asInt(payload)
		if !ok {
			return nil
		}
		return i
	case BooleanTag:
		return truthy(payload)
	case MapTag:
		m, _ := payload.(map[string]interface{})
		fields, _ := m["fields"].(map[string]interface{})
		return decodeFields(fields, depth+1, maxDepth)
	case ArrayTag:
		a, _ := payload.(map[string]interface{})
		values, _ := a["values"].([]interface{})
		s := make([]interface{}, len(values))
		for i, e := range values {
			s[i] = decodeValue(e, depth+1, maxDepth)
		}
		return s
	default:
		return nil
	}
}

// tagOf returns the tag and payload of a wire value. ok is false unless v is
// an object with exactly one member.
func tagOf(v interface{}) (tag Tag, payload interface{}, ok bool) {
	m, isMap := v.(map[string]interface{})
	if !isMap || len(m) != 1 {
		return "", nil, false
	}
	for k, p := range m {
		return Tag(k), p, true
	}
	return "", nil, false
}

// asInt parses an integerValue payload. The REST API sends 64-bit integers
// as decimal strings, but JSON numbers are accepted too; fractional numbers
// are truncated toward zero.
func asInt(x interface{}) (int64, bool) {
	switch x := x.(type) {
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return i, err == nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return asInt(f)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x >= math.MaxInt64 || x < math.MinInt64 {
			return 0, false
		}
		return int64(x), true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// truthy coerces a booleanValue payload to bool. Zero values of JSON types
// (false, 0, "", null, empty arrays and objects) are false.
func truthy(x interface{}) bool {
	switch x := x.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case []interface{}:
		return len(x) > 0
	case map[string]interface{}:
		return len(x) > 0
	default:
		return true
	}
}
