package comps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"github.com/stretchr/testify/require"
)

func applyOptions(opts []Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func TestLoadYAML(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(`
log_level: debug
encoding: network
lazy: true
queue_size: 512
`))
	require.NoError(t, err)
	require.Equal(t, &Config{LogLevel: "debug", Encoding: "network", Lazy: true, QueueSize: 512}, c)

	o := applyOptions(c.Options())
	require.True(t, o.Lazy)
	require.Equal(t, 512, o.QueueSize)
	require.Equal(t, nbt.NetworkLittleEndian, o.Encoding)
	require.NotSame(t, defaultOptions().Logger, o.Logger, "a log level installs its own logger")
}

func TestLoadYAML_Defaults(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)

	o := applyOptions(c.Options())
	def := defaultOptions()
	require.False(t, o.Lazy)
	require.Equal(t, def.QueueSize, o.QueueSize)
	require.Equal(t, def.Encoding, o.Encoding)
	require.Same(t, def.Logger, o.Logger)
}

func TestLoadYAML_Invalid(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("encoding: utf8"))
	require.ErrorContains(t, err, "unknown nbt encoding")

	_, err = LoadYAML(strings.NewReader("log_level: loud"))
	require.ErrorContains(t, err, "log level")

	_, err = LoadYAML(strings.NewReader("lazy: ["))
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comps.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lazy: true\n"), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	require.True(t, c.Lazy)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestBuilder_ConfigOptions(t *testing.T) {
	c := &Config{Lazy: true, QueueSize: 8}
	m, err := NewBuilder().Option(c.Options()...).Option(WithLogger(discardLogger())).Init()
	require.NoError(t, err)
	require.True(t, m.Options().Lazy)
	require.Equal(t, 8, cap(m.NewLogicLoop().tasks))
}
