// Package patch merges opportunistically extracted field data into a
// FormRecord as RFC6902 operations, so a single utterance can fill several
// fields at once without hand-rolled map surgery.
package patch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/anupamar/intake/types"
)

type OperationType string

const (
	OperationAdd     OperationType = "add"
	OperationReplace OperationType = "replace"
	OperationRemove  OperationType = "remove"
)

// Operation is a single RFC6902 patch operation.
type Operation struct {
	Op    OperationType `json:"op"`
	Path  string        `json:"path"`
	Value any           `json:"value,omitempty"`
}

// Set builds a replace-or-add operation for a field key.
func Set(key string, value any) Operation {
	return Operation{Op: OperationReplace, Path: "/" + escapePointer(key), Value: value}
}

// Apply applies ops to the record and returns the patched copy. Replace ops
// targeting absent paths are downgraded to add, and removes of absent paths
// are dropped, so extraction output never fails on an empty record.
func Apply(record types.FormRecord, ops []Operation) (types.FormRecord, error) {
	if len(ops) == 0 {
		return record, nil
	}

	currentJSON, err := sonic.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	ops = fixOperations(currentJSON, ops)

	patchJSON, err := sonic.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("marshal operations: %w", err)
	}
	decoded, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}
	patchedJSON, err := decoded.Apply(currentJSON)
	if err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}

	var result types.FormRecord
	if err := sonic.Unmarshal(patchedJSON, &result); err != nil {
		return nil, fmt.Errorf("unmarshal patched record: %w", err)
	}
	return result, nil
}

func fixOperations(currentJSON []byte, ops []Operation) []Operation {
	var doc any
	if err := sonic.Unmarshal(currentJSON, &doc); err != nil {
		return ops
	}

	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		switch op.Op {
		case OperationReplace:
			if !pathExists(doc, op.Path) {
				op.Op = OperationAdd
			}
			fixed = append(fixed, op)
		case OperationRemove:
			if pathExists(doc, op.Path) {
				fixed = append(fixed, op)
			}
		default:
			fixed = append(fixed, op)
		}
	}
	return fixed
}

func pathExists(doc any, path string) bool {
	if path == "" {
		return true
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}

	cur := doc
	for _, token := range strings.Split(path[1:], "/") {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			value, ok := node[token]
			if !ok {
				return false
			}
			cur = value
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil || index < 0 || index >= len(node) {
				return false
			}
			cur = node[index]
		default:
			return false
		}
	}
	return true
}

func escapePointer(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}
