package job

import (
	"encoding/json"
	"errors"
)

// ErrShapeMismatch is returned by MergeResult when the running result's
// Memory field and an incoming slice body's Memory field disagree on
// shape (one is a JSON object, the other a JSON array). Spec declares
// this a fatal job-level decode error: the job must be failed, not
// silently coerced.
var ErrShapeMismatch = errors.New("job: memory shape mismatch")

type resultBody struct {
	Memory json.RawMessage `json:"Memory"`
}

// MergeResult folds the Memory field of a successful slice's response
// body into the job's running result, according to mode.
//
// If cur is nil (the job has not yet completed a slice), body becomes
// the running result unchanged. Otherwise the two bodies' Memory
// fields are merged and the result carries the merged Memory under the
// same top-level shape as cur:
//
//   - both Memory fields are JSON objects: per-key reduction. mode
//     selects aggregation (sum, the default), max, or min. Keys absent
//     from cur are inserted.
//   - both Memory fields are JSON arrays: concatenation in arrival
//     order (sequence mode).
//   - any other combination: ErrShapeMismatch.
func MergeResult(cur json.RawMessage, body json.RawMessage, mode Mode) (json.RawMessage, error) {
	if len(cur) == 0 {
		return body, nil
	}

	var curBody, incBody resultBody
	if err := json.Unmarshal(cur, &curBody); err != nil {
		return nil, ErrShapeMismatch
	}
	if err := json.Unmarshal(body, &incBody); err != nil {
		return nil, ErrShapeMismatch
	}

	merged, err := mergeMemory(curBody.Memory, incBody.Memory, mode)
	if err != nil {
		return nil, err
	}
	curBody.Memory = merged
	return json.Marshal(curBody)
}

func mergeMemory(cur, incoming json.RawMessage, mode Mode) (json.RawMessage, error) {
	var curObj, incObj map[string]json.RawMessage
	curIsObj := json.Unmarshal(cur, &curObj) == nil
	incIsObj := json.Unmarshal(incoming, &incObj) == nil
	if curIsObj && incIsObj {
		return mergeObjects(curObj, incObj, mode)
	}

	var curArr, incArr []json.RawMessage
	curIsArr := json.Unmarshal(cur, &curArr) == nil
	incIsArr := json.Unmarshal(incoming, &incArr) == nil
	if curIsArr && incIsArr {
		return mergeArrays(curArr, incArr)
	}

	return nil, ErrShapeMismatch
}

func mergeObjects(cur, incoming map[string]json.RawMessage, mode Mode) (json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(cur))
	for k, v := range cur {
		out[k] = v
	}
	for k, incVal := range incoming {
		curVal, ok := out[k]
		if !ok {
			out[k] = incVal
			continue
		}
		merged, err := reduceCount(curVal, incVal, mode)
		if err != nil {
			return nil, err
		}
		out[k] = merged
	}
	return json.Marshal(out)
}

func reduceCount(a, b json.RawMessage, mode Mode) (json.RawMessage, error) {
	var an, bn int64
	if err := json.Unmarshal(a, &an); err != nil {
		return nil, ErrShapeMismatch
	}
	if err := json.Unmarshal(b, &bn); err != nil {
		return nil, ErrShapeMismatch
	}
	switch mode {
	case Max:
		if bn > an {
			an = bn
		}
	case Min:
		if bn < an {
			an = bn
		}
	default: // Unset and Aggregation both sum
		an += bn
	}
	return json.Marshal(an)
}

func mergeArrays(cur, incoming []json.RawMessage) (json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(cur)+len(incoming))
	out = append(out, cur...)
	out = append(out, incoming...)
	return json.Marshal(out)
}
