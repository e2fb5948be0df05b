package log2

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFilter(t *testing.T) {
	t.Parallel()

	b := bytes.NewBuffer(nil)
	l := NewWriter(b, LInfo)
	require.NotNil(t, l)
	l.SetFlags(0)

	l.Debugf("hidden %d", 1)
	l.Infof("visible %d", 2)
	l.Errorf("visible %d", 3)

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "visible 2", lines[0])
	assert.Equal(t, "error: visible 3", lines[1])

	l.SetLevel(LDebug)
	l.Debug("now visible")
	assert.Contains(t, b.String(), "debug: now visible")
}

func TestNilSafe(t *testing.T) {
	t.Parallel()

	var l *Log
	assert.False(t, l.Enabled(LError))
	l.Errorf("must not panic")
	l.SetLevel(LAll)
	assert.Nil(t, l.Clone(LDebug))
}

func TestClonePreservesWriter(t *testing.T) {
	t.Parallel()

	b := bytes.NewBuffer(nil)
	l := NewWriter(b, LError)
	l.SetFlags(0)
	l2 := l.Clone(LDebug)
	l2.Debug("through clone")
	assert.Contains(t, b.String(), "debug: through clone")
}
