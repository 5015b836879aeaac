package convert_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstanley/certhost/internal/convert"
	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

// writeFakeTool writes an executable shell script that stands in for
// rsvg-convert. body is the script after the shebang line.
func writeFakeTool(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake converter script requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "fake-convert")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path
}

func TestLocalConvert_SVGIsIdentity(t *testing.T) {
	conv := convert.NewLocal("definitely-not-installed", time.Second)

	doc := []byte("<svg/>")
	out, err := conv.Convert(context.Background(), doc, model.FormatSVG)

	require.NoError(t, err)
	assert.Equal(t, doc, out, "svg passthrough must not invoke the tool")
}

func TestLocalConvert_Success(t *testing.T) {
	// Mimics the tool contract: `tool -o <out> -f <format> <in>`, exit 0.
	tool := writeFakeTool(t, `printf 'converted:%s' "$4" > "$2"`)
	conv := convert.NewLocal(tool, 5*time.Second)

	out, err := conv.Convert(context.Background(), []byte("<svg/>"), model.FormatPNG)

	require.NoError(t, err)
	assert.Equal(t, "converted:png", string(out))
}

func TestLocalConvert_NonZeroExitIsConversionFailed(t *testing.T) {
	tool := writeFakeTool(t, `echo "no can do" >&2; exit 1`)
	conv := convert.NewLocal(tool, 5*time.Second)

	out, err := conv.Convert(context.Background(), []byte("<svg/>"), model.FormatPDF)

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrConversionFailed)
	assert.Nil(t, out, "no partial output on failure")
}

func TestLocalConvert_SpawnFailureIsConversionFailed(t *testing.T) {
	conv := convert.NewLocal(filepath.Join(t.TempDir(), "missing-tool"), time.Second)

	_, err := conv.Convert(context.Background(), []byte("<svg/>"), model.FormatPNG)

	assert.ErrorIs(t, err, driven.ErrConversionFailed)
}

func TestLocalConvert_TimeoutIsConversionFailed(t *testing.T) {
	tool := writeFakeTool(t, `sleep 10`)
	conv := convert.NewLocal(tool, 100*time.Millisecond)

	start := time.Now()
	_, err := conv.Convert(context.Background(), []byte("<svg/>"), model.FormatPNG)

	assert.ErrorIs(t, err, driven.ErrConversionFailed)
	assert.Less(t, time.Since(start), 5*time.Second, "timeout must kill the subprocess")
}

func TestRemoteConvert_Success(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/convert", r.URL.Path)
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	t.Cleanup(server.Close)

	conv := convert.NewRemote(server.URL, "secret-key", 5*time.Second)

	out, err := conv.Convert(context.Background(), []byte("<svg/>"), model.FormatPNG)

	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, out)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
}

func TestRemoteConvert_Non200IsConversionFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad input", http.StatusUnprocessableEntity)
	}))
	t.Cleanup(server.Close)

	conv := convert.NewRemote(server.URL, "secret-key", 5*time.Second)

	out, err := conv.Convert(context.Background(), []byte("<svg/>"), model.FormatPDF)

	assert.ErrorIs(t, err, driven.ErrConversionFailed)
	assert.Nil(t, out)
}

func TestRemoteConvert_NetworkErrorIsConversionFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	conv := convert.NewRemote(server.URL, "secret-key", time.Second)

	_, err := conv.Convert(context.Background(), []byte("<svg/>"), model.FormatPNG)

	assert.ErrorIs(t, err, driven.ErrConversionFailed)
}

func TestRemoteConvert_SVGIsIdentity(t *testing.T) {
	conv := convert.NewRemote("http://unused.invalid", "key", time.Second)

	doc := []byte("<svg/>")
	out, err := conv.Convert(context.Background(), doc, model.FormatSVG)

	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestRemoteConvert_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	conv := convert.NewRemote(server.URL, "key", time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := conv.Convert(ctx, []byte("<svg/>"), model.FormatPNG)

	require.Error(t, err)
	assert.True(t, errors.Is(err, driven.ErrConversionFailed))
}
