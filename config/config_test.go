package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mastercactapus/clpost/post"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "clpost.toml")
	require.NoError(t, os.WriteFile(name, []byte(data), 0644))
	return name
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "din", cfg.Extension)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
extension = "nc"
num_start = 10
num_step = 5
no_comments = true

[grbl]
port = "/dev/ttyACM0"

[spjs]
url = "ws://cnc-bridge:8989/ws"
port = "COM3"
`))
	require.NoError(t, err)

	assert.Equal(t, "nc", cfg.Extension)
	assert.Equal(t, "/dev/ttyACM0", cfg.Grbl.Port)
	assert.Equal(t, 115200, cfg.Grbl.Baud)
	assert.Equal(t, "COM3", cfg.SPJS.Port)
	assert.Equal(t, ":9091", cfg.Serve.Addr)

	opt := cfg.DirOptions()
	assert.Equal(t, 10, opt.LineStart)
	assert.Equal(t, 5, opt.LineStep)
	assert.True(t, opt.NoComments)
	assert.Equal(t, "nc", opt.Extension)
	assert.False(t, opt.Force)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `num_step = "one"`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `num_steps = 2`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key num_steps")

	_, err = Load(writeConfig(t, `num_step = 0`))
	assert.Equal(t, post.ErrLineStep, err)

	_, err = Load(writeConfig(t, `extension = "../din"`))
	assert.EqualError(t, err, "file extension must not contain a path separator")

	_, err = Load(writeConfig(t, `extension = ""`))
	assert.EqualError(t, err, "file extension must not be empty")
}
