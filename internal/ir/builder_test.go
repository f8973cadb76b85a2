package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_NewLabel(t *testing.T) {
	b := NewBuilder("mut")

	seen := make(map[Label]bool)
	for range 10 {
		l := b.NewLabel()
		assert.False(t, seen[l], "label %s handed out twice", l)
		seen[l] = true
	}
}

func TestBuilder_EmitAndResolve(t *testing.T) {
	b := NewBuilder("L")
	x := &Local{Name: "x", T: Int}
	end := b.NewLabel()

	b.Emit(&If{Cond: &Compare{Op: Eq, X: x, Y: IntConst(Int, 0)}, Target: end})
	b.Emit(&Assign{Dst: x, Src: IntConst(Int, 1)})
	b.Mark(end)
	b.Emit(&Return{Value: x})

	require.Equal(t, 4, b.Len())

	labels, err := Resolve(b.Stmts())
	require.NoError(t, err)
	assert.Equal(t, map[Label]int{end: 2}, labels)
}

func TestResolve(t *testing.T) {
	t.Run("undefined target", func(t *testing.T) {
		_, err := Resolve([]Stmt{&Goto{Target: "nowhere"}})
		require.ErrorIs(t, err, ErrUndefinedLabel)
	})

	t.Run("duplicate definition", func(t *testing.T) {
		_, err := Resolve([]Stmt{&Mark{Label: "a"}, &Mark{Label: "a"}})
		require.ErrorIs(t, err, ErrDuplicateLabel)
	})

	t.Run("switch arms", func(t *testing.T) {
		body := []Stmt{
			&Switch{Key: &Local{Name: "k", T: Int}, Cases: []Case{{Value: 1, Target: "one"}}, Default: "other"},
			&Mark{Label: "one"},
		}

		_, err := Resolve(body)
		require.ErrorIs(t, err, ErrUndefinedLabel)

		_, err = Resolve(append(body, &Mark{Label: "other"}))
		require.NoError(t, err)
	})
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal(&Goto{Target: "a"}))
	assert.True(t, Terminal(&Return{}))
	assert.True(t, Terminal(&Switch{}))
	assert.False(t, Terminal(&If{}))
	assert.False(t, Terminal(&Assign{}))
	assert.False(t, Terminal(&Mark{}))
}
