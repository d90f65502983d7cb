// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package expr

import "fmt"

// validateKeyCondition aceita apenas "pk = v" ou "pk = v AND <sort>", onde
// <sort> é uma comparação (exceto <>), BETWEEN ou begins_with sobre a sort key.
func validateKeyCondition(n Node, o options) error {
	switch x := n.(type) {
	case Compare:
		return checkPartition(x, o)
	case AndNode:
		if pk, ok := x.Left.(Compare); ok && isPartitionCandidate(pk, o) {
			if err := checkPartition(pk, o); err != nil {
				return err
			}
			return checkSort(x.Right, pk.Left.Root(), o)
		}
		if pk, ok := x.Right.(Compare); ok && isPartitionCandidate(pk, o) {
			if err := checkPartition(pk, o); err != nil {
				return err
			}
			return checkSort(x.Left, pk.Left.Root(), o)
		}
		return invalidKey("AND must combine a partition key equality with a sort key condition")
	case OrNode:
		return invalidKey("OR is not allowed in a key condition")
	case NotNode:
		return invalidKey("NOT is not allowed in a key condition")
	case nil:
		return invalidKey("empty key condition")
	}
	return invalidKey(fmt.Sprintf("%s is not allowed in a key condition", nodeName(n)))
}

func invalidKey(reason string) error {
	return &InvalidKeyConditionError{Reason: reason}
}

func isPartitionCandidate(c Compare, o options) bool {
	if c.Op != OpEQ || c.Left.IsNested() {
		return false
	}
	if o.schema {
		return c.Left.Root() == o.hashKey
	}
	return true
}

func checkPartition(c Compare, o options) error {
	if c.Op != OpEQ {
		return invalidKey(fmt.Sprintf("partition key %q must be compared with =, got %s", c.Left.String(), c.Op))
	}
	if c.Left.IsNested() {
		return invalidKey(fmt.Sprintf("partition key %q cannot be a nested path", c.Left.String()))
	}
	if o.schema && c.Left.Root() != o.hashKey {
		return invalidKey(fmt.Sprintf("%q is not the partition key %q", c.Left.Root(), o.hashKey))
	}
	if isRef(c.Right) {
		return invalidKey("partition key must be compared with a literal")
	}
	return nil
}

func checkSort(n Node, partition string, o options) error {
	var (
		ref      Ref
		operands []any
	)
	switch x := n.(type) {
	case Compare:
		if x.Op == OpNE {
			return invalidKey("<> is not allowed on the sort key")
		}
		ref, operands = x.Left, []any{x.Right}
	case Between:
		ref, operands = x.Ref, []any{x.Low, x.High}
	case BeginsWith:
		ref, operands = x.Ref, []any{x.Prefix}
	default:
		return invalidKey(fmt.Sprintf("%s is not allowed on the sort key", nodeName(n)))
	}

	if ref.IsNested() {
		return invalidKey(fmt.Sprintf("sort key %q cannot be a nested path", ref.String()))
	}
	if ref.Root() == partition {
		return invalidKey(fmt.Sprintf("%q is used as both partition and sort key", partition))
	}
	if o.schema {
		if o.sortKey == "" {
			return invalidKey("key schema has no sort key")
		}
		if ref.Root() != o.sortKey {
			return invalidKey(fmt.Sprintf("%q is not the sort key %q", ref.Root(), o.sortKey))
		}
	}
	for _, v := range operands {
		if isRef(v) {
			return invalidKey("sort key must be compared with literals")
		}
	}
	return nil
}

func isRef(v any) bool {
	switch v.(type) {
	case Ref, *Ref:
		return true
	}
	return false
}

func nodeName(n Node) string {
	switch n.(type) {
	case Compare:
		return "comparison"
	case Exists:
		return "attribute_exists"
	case NotExists:
		return "attribute_not_exists"
	case BeginsWith:
		return "begins_with"
	case Contains:
		return "contains"
	case Between:
		return "BETWEEN"
	case In:
		return "IN"
	case AndNode:
		return "AND"
	case OrNode:
		return "OR"
	case NotNode:
		return "NOT"
	case RawNode:
		return "raw condition"
	}
	return fmt.Sprintf("%T", n)
}
