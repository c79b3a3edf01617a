package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-stegocrypt/config"
	"github.com/hasbyte1/go-stegocrypt/logging"
	"github.com/hasbyte1/go-stegocrypt/raster"
	"github.com/hasbyte1/go-stegocrypt/stego"
)

func jsonLines(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestNew(t *testing.T) {
	_, err := logging.New(config.LogConfig{Level: "nope"}, &bytes.Buffer{})
	require.Error(t, err)

	var out bytes.Buffer
	log, err := logging.New(config.LogConfig{Level: "warn", Format: "json"}, &out)
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown")

	lines := jsonLines(t, &out)
	require.Len(t, lines, 1)
	require.Equal(t, "shown", lines[0]["msg"])
}

func TestObserver_LogsPipeline(t *testing.T) {
	var out bytes.Buffer
	log, err := logging.New(config.LogConfig{Level: "debug", Format: "json"}, &out)
	require.NoError(t, err)

	key := make([]byte, 32)
	entry := logging.WithOperation(log, stego.OpHide).WithFields(logging.KeyFields(key))
	codec := stego.New(stego.WithObserver(logging.Observer(entry)))

	stegoBuf, err := codec.Hide("HI", raster.Flat(make([]uint8, 1000)), key)
	require.NoError(t, err)
	_, err = codec.Reveal(stegoBuf, key)
	require.NoError(t, err)

	lines := jsonLines(t, &out)
	require.Len(t, lines, 4)

	opID, _ := lines[0]["op_id"].(string)
	_, err = uuid.Parse(opID)
	require.NoError(t, err)
	for _, l := range lines {
		require.Equal(t, opID, l["op_id"])
		require.Equal(t, "hide", l["op"])
		require.Len(t, l["key_fp"], 16)
	}

	require.Equal(t, "embedded", lines[1]["stage"])
	require.EqualValues(t, 256, lines[1]["bits"])
	require.EqualValues(t, 968, lines[1]["capacity"])
	require.Equal(t, "opened", lines[3]["stage"])
	require.EqualValues(t, 2, lines[3]["bytes"])

	require.NotContains(t, out.String(), strings.Repeat("00", 32))
}

func TestWithOperation_FreshIDs(t *testing.T) {
	log, err := logging.New(config.LogConfig{Level: "info", Format: "text"}, &bytes.Buffer{})
	require.NoError(t, err)

	a := logging.WithOperation(log, stego.OpHide).Data["op_id"]
	b := logging.WithOperation(log, stego.OpHide).Data["op_id"]
	require.NotEqual(t, a, b)
}
