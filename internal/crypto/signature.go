// SPDX-License-Identifier: Apache-2.0

// Package crypto implements the request-signing scheme required by signed
// flight-search providers (Travelpayouts realtime search).
//
// The upstream protocol authenticates unauthenticated-transport requests with
// an MD5 digest over a canonical flattening of the request parameters. The
// canonicalization contract implemented here is fixed:
//
//   - object keys are visited in ascending lexicographic order at every
//     nesting level;
//   - arrays are visited element by element and never reordered;
//   - every scalar is stringified and appended, in visitation order, to a
//     flat list of values;
//   - the signature is md5(secret + ":" + values joined with ":").
//
// Sorting keys recursively (rather than using a hard-coded field order) is
// the binding interpretation of the upstream rules; see DESIGN.md for the
// rejected alternative.
package crypto

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Sign computes the hex-encoded request signature for params using secret.
//
// params must be built from map[string]any, []any and scalar values (string,
// bool, integers, floats), the shapes the adapters construct for wire bodies.
// Signing the same logical structure always yields the same signature
// regardless of map insertion order.
func Sign(params map[string]any, secret string) string {
	values := make([]string, 0, 16)
	flatten(params, &values)

	sum := md5.Sum([]byte(secret + ":" + strings.Join(values, ":")))
	return hex.EncodeToString(sum[:])
}

// flatten appends the scalar values reachable from v to out, visiting map
// keys in ascending order and array elements in place.
func flatten(v any, out *[]string) {
	switch value := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(value[k], out)
		}
	case []any:
		for _, item := range value {
			flatten(item, out)
		}
	default:
		*out = append(*out, formatScalar(value))
	}
}

// formatScalar renders a scalar exactly the way it appears in the JSON wire
// body, so the signed string matches what the upstream recomputes.
func formatScalar(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}
