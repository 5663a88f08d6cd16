package debounce

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gotest.tools/v3/assert"
)

func TestDebouncer_OnlyLastTickIsFresh(t *testing.T) {
	d := New("search", 10*time.Millisecond)

	var cmds []tea.Cmd
	for i := 0; i < 4; i++ {
		cmds = append(cmds, d.Trigger())
	}

	fresh := 0
	for _, cmd := range cmds {
		msg := cmd().(Msg)
		if d.Fresh(msg) {
			fresh++
			assert.Equal(t, msg.Seq, uint64(4))
		}
	}
	assert.Equal(t, fresh, 1)
}

func TestDebouncer_Cancel(t *testing.T) {
	d := New("save", time.Millisecond)
	msg := d.Trigger()().(Msg)
	d.Cancel()
	assert.Assert(t, !d.Fresh(msg))
}

func TestDebouncer_KeysDoNotCross(t *testing.T) {
	search := New("search", time.Millisecond)
	save := New("save", time.Millisecond)

	msg := search.Trigger()().(Msg)
	save.Trigger()

	assert.Assert(t, search.Fresh(msg))
	assert.Assert(t, !save.Fresh(msg))
	assert.Assert(t, !save.Owns(msg))
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	assert.Equal(t, New("x", 0).Delay(), DefaultDelay)
}

func TestGeneration(t *testing.T) {
	var g Generation
	first := g.Next()
	second := g.Next()

	assert.Assert(t, !g.Current(first))
	assert.Assert(t, g.Current(second))

	g.Invalidate()
	assert.Assert(t, !g.Current(second))
}
