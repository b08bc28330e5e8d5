package agents

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"

	"github.com/rigup-dev/rigup/internal/output"
)

// mergeJSONFile deep-merges desired into the JSON document at path and
// writes it back pretty-printed. A missing file starts empty. Keys not in
// desired are preserved untouched. Reports whether the file changed.
func mergeJSONFile(path string, desired map[string]any) (bool, error) {
	current := map[string]any{}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &current); err != nil {
			return false, &output.ExitError{
				Code:    output.ExitUserError,
				Message: path + " is not valid JSON: " + err.Error(),
				Cause:   err,
			}
		}
	case os.IsNotExist(err):
		raw = nil
	default:
		return false, output.NewSystemErrorWithCause("cannot read "+path, err)
	}

	merged := deepMerge(current, desired)

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return false, output.NewSystemErrorWithCause("cannot encode "+path, err)
	}
	out = append(out, '\n')

	if bytes.Equal(raw, out) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, output.NewSystemErrorWithCause("cannot create "+filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return false, output.NewSystemErrorWithCause("cannot write "+path, err)
	}
	return true, nil
}

// deepMerge folds src into dst. Nested maps merge recursively, lists union
// with existing entries kept first, scalars take src's value. dst is
// modified and returned.
func deepMerge(dst, src map[string]any) map[string]any {
	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = srcVal
			continue
		}
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dstVal.(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = deepMerge(dstMap, srcMap)
			continue
		}
		srcList, srcIsList := srcVal.([]any)
		dstList, dstIsList := dstVal.([]any)
		if srcIsList && dstIsList {
			dst[key] = unionList(dstList, srcList)
			continue
		}
		dst[key] = srcVal
	}
	return dst
}

// unionList appends src entries missing from dst, keeping dst's order.
func unionList(dst, src []any) []any {
	for _, item := range src {
		found := false
		for _, existing := range dst {
			if reflect.DeepEqual(existing, item) {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, item)
		}
	}
	return dst
}

// jsonFileSatisfies reports whether the JSON document at path already
// carries everything desired asks for: a missing file or key means
// missing; a differing value means outdated.
func jsonFileSatisfies(path string, desired map[string]any) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return StateMissing, nil
		}
		return "", output.NewSystemErrorWithCause("cannot read "+path, err)
	}
	current := map[string]any{}
	if err := json.Unmarshal(raw, &current); err != nil {
		return StateOutdated, nil
	}
	if covers(current, desired) {
		return StateInstalled, nil
	}
	return StateOutdated, nil
}

// covers reports whether actual contains every desired key with a
// matching value, recursing into maps and requiring list membership.
func covers(actual, desired map[string]any) bool {
	for key, want := range desired {
		got, exists := actual[key]
		if !exists {
			return false
		}
		wantMap, wantIsMap := want.(map[string]any)
		gotMap, gotIsMap := got.(map[string]any)
		if wantIsMap {
			if !gotIsMap || !covers(gotMap, wantMap) {
				return false
			}
			continue
		}
		wantList, wantIsList := want.([]any)
		gotList, gotIsList := got.([]any)
		if wantIsList {
			if !gotIsList || !containsAll(gotList, wantList) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func containsAll(haystack, needles []any) bool {
	for _, needle := range needles {
		found := false
		for _, item := range haystack {
			if reflect.DeepEqual(item, needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
