package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/binary"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/rpc"
)

func newTestLogger() (*Logger, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	l := NewLoggerWithWriters(out, errOut)
	l.SetNoColor(true)
	return l, out, errOut
}

func TestLogger_Streams(t *testing.T) {
	l, out, errOut := newTestLogger()

	l.Info("hello %s", "world")
	l.Success("done")
	l.Warn("careful")
	l.Error("broken")
	l.Debug("hidden")

	assert.Equal(t, "hello world\n✓ done\n", out.String())
	assert.Equal(t, "Warning: careful\nError: broken\n", errOut.String())

	l.SetVerbose(true)
	assert.True(t, l.IsVerbose())
	l.Debug("shown")
	assert.Contains(t, errOut.String(), "[DEBUG] shown")
}

func TestLogger_JSONMode(t *testing.T) {
	l, out, errOut := newTestLogger()
	l.SetJSONMode(true)

	l.Info("suppressed")
	l.KeyValue("chain", "chain1")
	l.Println(`{"ok":true}`)
	l.Error("still shown")

	assert.Equal(t, "{\"ok\":true}\n", out.String())
	assert.Contains(t, errOut.String(), "still shown")
	assert.Same(t, errOut, l.ErrWriter())
}

func TestLogger_KeyValue(t *testing.T) {
	l, out, _ := newTestLogger()
	l.KeyValue("hot", "/data/hot")
	assert.Equal(t, "hot:             /data/hot\n", out.String())
}

func TestPrintCallError(t *testing.T) {
	t.Run("remote error keeps diagnostic", func(t *testing.T) {
		l, _, errOut := newTestLogger()
		code := -708
		l.PrintCallError(&rpc.Error{
			Kind:    rpc.KindRemote,
			Method:  "verifypermission",
			Message: "error code: -708\nerror message:\nInvalid chain name\n",
			Code:    &code,
		})

		got := errOut.String()
		assert.True(t, strings.HasPrefix(got, "Error: verifypermission: remote error\n"))
		assert.Contains(t, got, "  code: -708\n")
		assert.Contains(t, got, "  Invalid chain name\n")
	})

	t.Run("not found lists tried paths", func(t *testing.T) {
		l, _, errOut := newTestLogger()
		nf := &binary.NotFoundError{Name: "multichain-cli", Tried: []string{"/usr/local/bin/multichain-cli", "/usr/bin/multichain-cli"}}
		l.PrintCallError(rpc.Classify("getinfo", nf))

		got := errOut.String()
		assert.Contains(t, got, "executable not found")
		assert.Contains(t, got, "    /usr/local/bin/multichain-cli\n")
		assert.Contains(t, got, "    /usr/bin/multichain-cli\n")
	})

	t.Run("plain error", func(t *testing.T) {
		l, _, errOut := newTestLogger()
		l.PrintCallError(errors.New("boom"))
		assert.Equal(t, "Error: boom\n", errOut.String())
	})
}

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(&buf, "warn", "json")
	logger.Info("dropped")
	logger.Warn("kept", "chain", "chain1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "chain1", rec["chain"])

	buf.Reset()
	NewSlogLogger(&buf, "debug", "text").Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}
