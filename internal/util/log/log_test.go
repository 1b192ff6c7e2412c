package logutil_test

import (
	"bytes"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	logutil "github.com/markrussinovich/shmchan/internal/util/log"
)

func newContext(t *testing.T, buf *bytes.Buffer, args ...string) *cli.Context {
	t.Helper()

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("logfmt", "text", "")
	set.String("loglvl", "info", "")
	require.NoError(t, set.Parse(args))

	app := &cli.App{
		ErrWriter: buf,
		Metadata:  map[string]interface{}{},
	}
	return cli.NewContext(app, set, nil)
}

func TestLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logutil.New(newContext(t, &buf, "-loglvl", "warn"))

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestJSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logutil.New(newContext(t, &buf, "-logfmt", "json"))

	logger.WithField("role", "server").Info("created")
	assert.Contains(t, buf.String(), `"role":"server"`)
	assert.Contains(t, buf.String(), `"msg":"created"`)
}

func TestNoneSilencesBelowFatal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logutil.New(newContext(t, &buf, "-logfmt", "none", "-loglvl", "trace"))

	logger.Error("dropped")
	assert.Empty(t, buf.String())
}
