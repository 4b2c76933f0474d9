package sink

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "part.din")
	require.NoError(t, os.WriteFile(name, []byte("old content that is longer\n"), 0644))

	f, err := NewFile(name)
	require.NoError(t, err)
	assert.Equal(t, name, f.Name())
	require.NoError(t, f.WriteLine("N1 G90 G71"))
	require.NoError(t, f.WriteLine("N2 M30"))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "N1 G90 G71\nN2 M30\n", string(data))
}

func TestFile_BadPath(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "missing", "part.din"))
	assert.Error(t, err)
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	require.NoError(t, c.WriteLine("( unprocessed: PARTNO X )"))
	require.NoError(t, c.Close())
	require.NoError(t, c.WriteLine("N1 M30"))
	assert.Equal(t, "( unprocessed: PARTNO X )\nN1 M30\n", buf.String())
}

type failSink struct{ Lines }

func (failSink) WriteLine(string) error { return errors.New("disk full") }

func TestDual(t *testing.T) {
	a, b := &Lines{}, &Lines{}
	d := NewDual(a, b)
	require.NoError(t, d.WriteLine("N1 G90 G71"))
	require.NoError(t, d.Close())

	assert.Equal(t, []string{"N1 G90 G71"}, a.Lines)
	assert.Equal(t, []string{"N1 G90 G71"}, b.Lines)
	assert.True(t, a.Closed)
	assert.True(t, b.Closed)

	// the second sink still gets the line when the first fails
	c := &Lines{}
	d = NewDual(&failSink{}, c)
	assert.EqualError(t, d.WriteLine("N1 M30"), "disk full")
	assert.Equal(t, []string{"N1 M30"}, c.Lines)
}
