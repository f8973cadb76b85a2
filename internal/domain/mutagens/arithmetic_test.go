package mutagens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/weave/internal/ir"
	m "gooze.dev/pkg/weave/internal/model"
)

func TestGenerateArithmeticMutations(t *testing.T) {
	t.Run("double division", func(t *testing.T) {
		a, b, r := local("a", ir.Double), local("b", ir.Double), local("r", ir.Double)
		stmt := &ir.Assign{Dst: r, Src: &ir.Binary{Op: ir.Div, X: a, Y: b, T: ir.Double}}

		cands, err := GenerateArithmeticMutations(newSite(stmt))
		require.NoError(t, err)

		assert.Equal(t, [][]string{
			{"r = a + b"},
			{"r = b / a"},
			{"r = a * b"},
			{"r = a - b"},
			{"r = b - a"},
			{"r = a"},
			{"r = b"},
		}, formatted(t, cands, m.OperatorAOR))
	})

	t.Run("integer division adds remainder variants", func(t *testing.T) {
		a, b, r := local("a", ir.Int), local("b", ir.Int), local("r", ir.Int)
		stmt := &ir.Assign{Dst: r, Src: &ir.Binary{Op: ir.Div, X: a, Y: b, T: ir.Int}}

		cands, err := GenerateArithmeticMutations(newSite(stmt))
		require.NoError(t, err)
		require.Len(t, cands, 9)
		assert.Equal(t, []string{"r = a % b"}, formatted(t, cands, m.OperatorAOR)[5])
		assert.Equal(t, []string{"r = b % a"}, formatted(t, cands, m.OperatorAOR)[6])
	})

	t.Run("subtraction keeps its swapped form", func(t *testing.T) {
		a, b, r := local("a", ir.Long), local("b", ir.Long), local("r", ir.Long)
		stmt := &ir.Assign{Dst: r, Src: &ir.Binary{Op: ir.Sub, X: a, Y: b, T: ir.Long}}

		cands, err := GenerateArithmeticMutations(newSite(stmt))
		require.NoError(t, err)

		got := formatted(t, cands, m.OperatorAOR)
		assert.Contains(t, got, []string{"r = b - a"})
		assert.NotContains(t, got, []string{"r = a - b"})
		assert.Len(t, got, 9)
	})

	t.Run("floating remainder is not eligible", func(t *testing.T) {
		a, b, r := local("a", ir.Float), local("b", ir.Float), local("r", ir.Float)
		stmt := &ir.Assign{Dst: r, Src: &ir.Binary{Op: ir.Rem, X: a, Y: b, T: ir.Float}}

		cands, err := GenerateArithmeticMutations(newSite(stmt))
		require.NoError(t, err)
		assert.Empty(t, cands)
	})

	t.Run("field destination is skipped", func(t *testing.T) {
		a, b := local("a", ir.Int), local("b", ir.Int)
		dst := &ir.FieldRef{Class: "C", Name: "x", T: ir.Int}
		stmt := &ir.Assign{Dst: dst, Src: &ir.Binary{Op: ir.Add, X: a, Y: b, T: ir.Int}}

		cands, err := GenerateArithmeticMutations(newSite(stmt))
		require.NoError(t, err)
		assert.Empty(t, cands)
	})

	t.Run("logical operators are not arithmetic", func(t *testing.T) {
		a, b, r := local("a", ir.Int), local("b", ir.Int), local("r", ir.Int)
		stmt := &ir.Assign{Dst: r, Src: &ir.Binary{Op: ir.Xor, X: a, Y: b, T: ir.Int}}

		cands, err := GenerateArithmeticMutations(newSite(stmt))
		require.NoError(t, err)
		assert.Empty(t, cands)
	})
}
