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

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// wireValue parses a JSON wire value the way the client does.
func wireValue(t *testing.T, s string) interface{} {
	t.Helper()
	r := &Response{Body: []byte(s)}
	var v interface{}
	if err := r.decodeJSON(&v); err != nil {
		t.Fatalf("%s: %v", s, err)
	}
	return v
}

func TestDecodeValue(t *testing.T) {
	for _, test := range []struct {
		in   string
		want interface{}
	}{
		{`{"stringValue": "abc"}`, "abc"},
		{`{"stringValue": ""}`, ""},
		{`{"stringValue": null}`, ""},
		{`{"stringValue": true}`, "true"},
		{`{"stringValue": 12}`, "12"},
		{`{"integerValue": "42"}`, int64(42)},
		{`{"integerValue": 42}`, int64(42)},
		{`{"integerValue": "-9223372036854775808"}`, int64(-9223372036854775808)},
		{`{"integerValue": 4.9}`, int64(4)},
		{`{"integerValue": "forty-two"}`, nil},
		{`{"booleanValue": true}`, true},
		{`{"booleanValue": false}`, false},
		{`{"booleanValue": "yes"}`, true},
		{`{"booleanValue": 0}`, false},
		{`{"booleanValue": null}`, false},
		{`{"mapValue": {"fields": {"x": {"integerValue": "5"}}}}`, map[string]interface{}{"x": int64(5)}},
		{`{"mapValue": {}}`, map[string]interface{}{}},
		{`{"arrayValue": {"values": [{"stringValue": "a"}, {"integerValue": "1"}]}}`, []interface{}{"a", int64(1)}},
		{`{"arrayValue": {}}`, []interface{}{}},
		{
			`{"arrayValue": {"values": [{"mapValue": {"fields": {"b": {"booleanValue": true}}}}, {"arrayValue": {"values": [{"stringValue": "z"}]}}]}}`,
			[]interface{}{map[string]interface{}{"b": true}, []interface{}{"z"}},
		},
		// Tags without a decoding rule decode to nil.
		{`{"doubleValue": 1.5}`, nil},
		{`{"nullValue": null}`, nil},
		{`{"timestampValue": "2019-03-14T00:00:00Z"}`, nil},
		{`{"arrayValue": {"values": [{"doubleValue": 1.5}, {"stringValue": "s"}]}}`, []interface{}{nil, "s"}},
		// Not a tagged value.
		{`{}`, nil},
		{`{"stringValue": "a", "integerValue": "1"}`, nil},
		{`"abc"`, nil},
	} {
		got := DecodeValue(wireValue(t, test.in))
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%s: (-want +got)\n%s", test.in, diff)
		}
	}
}

func TestDecodeValueGoTypes(t *testing.T) {
	for _, test := range []struct {
		in   interface{}
		want interface{}
	}{
		{map[string]interface{}{"integerValue": 7}, int64(7)},
		{map[string]interface{}{"integerValue": int64(8)}, int64(8)},
		{map[string]interface{}{"integerValue": float64(9)}, int64(9)},
		{map[string]interface{}{"integerValue": json.Number("10")}, int64(10)},
		{map[string]interface{}{"stringValue": json.Number("11")}, "11"},
		{map[string]interface{}{"booleanValue": 1}, true},
	} {
		got := DecodeValue(test.in)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%v: (-want +got)\n%s", test.in, diff)
		}
	}
}

func TestDecodeDocument(t *testing.T) {
	fields := wireValue(t, `{
		"name": {"stringValue": "Ada"},
		"age": {"integerValue": "36"},
		"admin": {"booleanValue": false},
		"langs": {"arrayValue": {"values": [{"stringValue": "en"}, {"stringValue": "fr"}]}},
		"address": {"mapValue": {"fields": {
			"city": {"stringValue": "London"},
			"geo": {"mapValue": {"fields": {"zone": {"integerValue": "1"}}}}
		}}},
		"ref": {"referenceValue": "projects/p/databases/(default)/documents/users/2"}
	}`).(map[string]interface{})
	want := map[string]interface{}{
		"name":  "Ada",
		"age":   int64(36),
		"admin": false,
		"langs": []interface{}{"en", "fr"},
		"address": map[string]interface{}{
			"city": "London",
			"geo":  map[string]interface{}{"zone": int64(1)},
		},
		"ref": nil,
	}
	got := DecodeDocument(fields)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
	if got := DecodeDocument(nil); len(got) != 0 {
		t.Errorf("DecodeDocument(nil): got %v, want empty", got)
	}
}

func TestDecodeMaxDepth(t *testing.T) {
	fields := wireValue(t, `{
		"top": {"stringValue": "t"},
		"m": {"mapValue": {"fields": {
			"a": {"integerValue": "1"},
			"deep": {"mapValue": {"fields": {"b": {"integerValue": "2"}}}}
		}}},
		"arr": {"arrayValue": {"values": [{"integerValue": "3"}, {"arrayValue": {"values": [{"integerValue": "4"}]}}]}}
	}`).(map[string]interface{})

	for _, test := range []struct {
		maxDepth int
		want     map[string]interface{}
	}{
		{
			maxDepth: 0,
			want: map[string]interface{}{
				"top": "t",
				"m":   map[string]interface{}{"a": int64(1), "deep": map[string]interface{}{"b": int64(2)}},
				"arr": []interface{}{int64(3), []interface{}{int64(4)}},
			},
		},
		{
			maxDepth: 1,
			want: map[string]interface{}{
				"top": "t",
				"m":   map[string]interface{}{"a": nil, "deep": nil},
				"arr": []interface{}{nil, nil},
			},
		},
		{
			maxDepth: 2,
			want: map[string]interface{}{
				"top": "t",
				"m":   map[string]interface{}{"a": int64(1), "deep": map[string]interface{}{"b": nil}},
				"arr": []interface{}{int64(3), []interface{}{nil}},
			},
		},
	} {
		got := decodeFields(fields, 1, test.maxDepth)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("maxDepth %d: (-want +got)\n%s", test.maxDepth, diff)
		}
	}
}
