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
package expr_test

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/dynamodel/pkg/expr"
)

func TestCompileUpdate_GroupsClauses(t *testing.T) {
	t.Parallel()

	out, err := expr.CompileUpdate([]expr.Action{
		expr.Set(expr.Name("name"), "x"),
		expr.Add(expr.Name("count"), 1),
		expr.Remove(expr.Name("legacy")),
		expr.Delete(expr.Name("tags"), map[string]struct{}{"old": {}}),
		expr.Set(expr.Name("status"), "on"),
	})
	require.NoError(t, err)

	assert.Equal(t, "SET #n0 = :v0, #n4 = :v3 REMOVE #n2 ADD #n1 :v1 DELETE #n3 :v2", out.Text)
	assert.Equal(t, map[string]string{
		"#n0": "name", "#n1": "count", "#n2": "legacy", "#n3": "tags", "#n4": "status",
	}, out.Names)
	assert.Equal(t, &types.AttributeValueMemberSS{Value: []string{"old"}}, out.Values[":v2"])
	assert.Equal(t, expr.Offset{Names: 5, Values: 4}, out.Next)
}

func TestCompileUpdate_DuplicatePath(t *testing.T) {
	t.Parallel()

	_, err := expr.CompileUpdate([]expr.Action{
		expr.Set(expr.Name("status"), "x"),
		expr.Remove(expr.Name("status")),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, expr.ErrDuplicateUpdatePath)

	var dupErr *expr.DuplicateUpdatePathError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "status", dupErr.Path)

	_, err = expr.CompileUpdate([]expr.Action{
		expr.Set(expr.Name("a").At(0), 1),
		expr.Set(expr.Name("a").At(1), 2),
		expr.Set(expr.Name("a").Into("0"), 3),
	})
	assert.NoError(t, err)
}

func TestCompileUpdate_SetNilBecomesRemove(t *testing.T) {
	t.Parallel()

	var missing *string
	out, err := expr.CompileUpdate([]expr.Action{
		expr.Set(expr.Name("a"), nil),
		expr.Set(expr.Name("b"), missing),
	})
	require.NoError(t, err)
	assert.Equal(t, "REMOVE #n0, #n1", out.Text)
	assert.Nil(t, out.Values)
}

func TestCompileUpdate_Operands(t *testing.T) {
	t.Parallel()

	out, err := expr.CompileUpdate([]expr.Action{expr.Add(expr.Name("tags"), []string{"b", "a"})})
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberSS{Value: []string{"a", "b"}}, out.Values[":v0"])

	out, err = expr.CompileUpdate([]expr.Action{expr.Set(expr.Name("copy"), expr.Name("orig"))})
	require.NoError(t, err)
	assert.Equal(t, "SET #n0 = #n1", out.Text)

	tests := []struct {
		name   string
		action expr.Action
	}{
		{"add string", expr.Add(expr.Name("a"), "x")},
		{"delete number", expr.Delete(expr.Name("a"), 1)},
		{"add mixed set", expr.Add(expr.Name("a"), []any{"x", 1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := expr.CompileUpdate([]expr.Action{tt.action})
			var litErr *expr.LiteralError
			assert.True(t, errors.As(err, &litErr))
		})
	}

	_, err = expr.CompileUpdate(nil)
	assert.ErrorIs(t, err, expr.ErrNoUpdateActions)
}

func TestCompileUpdate_OffsetThenCondition(t *testing.T) {
	t.Parallel()

	upd, err := expr.CompileUpdate([]expr.Action{expr.Set(expr.Name("status"), "done")})
	require.NoError(t, err)

	cond, err := expr.Compile(expr.Name("status").Equal("open"), expr.ModeCondition, expr.WithOffset(upd.Next))
	require.NoError(t, err)
	assert.Equal(t, "#n1 = :v1", cond.Text)

	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	require.NoError(t, upd.MergeInto(names, values))
	require.NoError(t, cond.MergeInto(names, values))
	assert.Len(t, names, 2)
	assert.Len(t, values, 2)
}
