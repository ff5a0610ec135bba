package seamcarve

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePNG stores a random image of the given size as a png file.
func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, ToImage(noiseBuffer(t, width, height, int64(width*height)))))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func decodeFile(t *testing.T, path string) *PixelBuffer {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := Decode(f)
	require.NoError(t, err)
	return img
}

func TestExec_WalkDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.JPG", "notes.txt", filepath.Join("sub", "c.gif")} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte{0}, 0644))
	}

	done := make(chan struct{})
	defer close(done)

	var paths []string
	pathChan, errChan := walkDir(done, dir, SourceExtensions)
	for path := range pathChan {
		rel, err := filepath.Rel(dir, path)
		require.NoError(t, err)
		paths = append(paths, rel)
	}
	assert.NoError(t, <-errChan)

	sort.Strings(paths)
	assert.Equal(t, []string{"a.png", "b.JPG", filepath.Join("sub", "c.gif")}, paths)
}

func TestExec_DestPath(t *testing.T) {
	seen := make(map[string]bool)
	dest := func(src string) string {
		dst, err := destPath("out", "src", src, seen)
		require.NoError(t, err)
		return dst
	}

	assert.Equal(t, filepath.Join("out", "a.jpg"), dest(filepath.Join("src", "a.jpg")))
	assert.Equal(t, filepath.Join("out", "sub", "a.jpg"), dest(filepath.Join("src", "sub", "a.jpg")))
	assert.Equal(t, filepath.Join("out", "a_webp.png"), dest(filepath.Join("src", "a.webp")))
	// An existing name is never assigned twice.
	assert.Equal(t, filepath.Join("out", "a_webp_1.png"), dest(filepath.Join("src", "a_webp.png")))
	assert.Equal(t, filepath.Join("out", "a_webp_2.png"), dest(filepath.Join("src", "a_webp.png")))
}

func TestExec_SingleFile(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "in.png"), filepath.Join(dir, "out.png")
	writePNG(t, src, 10, 8)

	p := &Processor{NewWidth: 6, NewHeight: 5}
	op := &Ops{Src: src, Dst: dst, PipeName: "-"}
	require.NoError(t, p.Execute(context.Background(), op))

	res := decodeFile(t, dst)
	assert.Equal(t, 6, res.Width)
	assert.Equal(t, 5, res.Height)
}

func TestExec_Directory(t *testing.T) {
	srcDir, dstDir := t.TempDir(), filepath.Join(t.TempDir(), "out")
	sizes := map[string][2]int{
		"a.png":                       {10, 8},
		"b.png":                       {12, 9},
		filepath.Join("sub", "a.png"): {14, 6},
	}
	for name, size := range sizes {
		writePNG(t, filepath.Join(srcDir, name), size[0], size[1])
	}
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "notes.txt"), []byte("skip"), 0644))

	p := &Processor{NewWidth: 7}
	op := &Ops{Src: srcDir, Dst: dstDir, PipeName: "-", Workers: 2}
	require.NoError(t, p.Execute(context.Background(), op))

	// Files with the same name in different directories are kept apart.
	for name, size := range sizes {
		res := decodeFile(t, filepath.Join(dstDir, name))
		assert.Equal(t, 7, res.Width, name)
		assert.Equal(t, size[1], res.Height, name)
	}
	_, err := os.Stat(filepath.Join(dstDir, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExec_DirectoryRenamedFormats(t *testing.T) {
	srcDir, dstDir := t.TempDir(), filepath.Join(t.TempDir(), "out")
	writePNG(t, filepath.Join(srcDir, "a.png"), 10, 8)
	// Decoding sniffs the content, so a png payload stands in for a webp source.
	writePNG(t, filepath.Join(srcDir, "a.webp"), 12, 9)

	p := &Processor{NewWidth: 7}
	op := &Ops{Src: srcDir, Dst: dstDir, PipeName: "-", Workers: 2}
	require.NoError(t, p.Execute(context.Background(), op))

	assert.Equal(t, 8, decodeFile(t, filepath.Join(dstDir, "a.png")).Height)
	assert.Equal(t, 9, decodeFile(t, filepath.Join(dstDir, "a_webp.png")).Height)
}

func TestExec_DirectoryToPipe(t *testing.T) {
	p := &Processor{NewWidth: 7}
	op := &Ops{Src: t.TempDir(), Dst: "-", PipeName: "-"}
	assert.Error(t, p.Execute(context.Background(), op))
}

func TestExec_MissingSource(t *testing.T) {
	dir := t.TempDir()
	p := &Processor{NewWidth: 7}
	op := &Ops{Src: filepath.Join(dir, "missing.png"), Dst: filepath.Join(dir, "out.png"), PipeName: "-"}
	assert.Error(t, p.Execute(context.Background(), op))
}

func TestExec_FailureRemovesOutput(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "broken.png"), filepath.Join(dir, "out.png")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0644))

	p := &Processor{NewWidth: 7}
	op := &Ops{Src: src, Dst: dst, PipeName: "-"}
	assert.Error(t, p.Execute(context.Background(), op))

	_, err := os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestExec_UnsupportedDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	writePNG(t, src, 10, 8)

	p := &Processor{NewWidth: 7}
	op := &Ops{Src: src, Dst: filepath.Join(dir, "out.tiff"), PipeName: "-"}
	assert.ErrorIs(t, p.Execute(context.Background(), op), ErrUnsupportedFormat)
}

func TestExec_DownloadSource(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "remote.png"), 10, 8)
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	dst := filepath.Join(dir, "out.jpg")
	p := &Processor{NewWidth: 5}
	op := &Ops{Src: srv.URL + "/remote.png", Dst: dst, PipeName: "-"}
	require.NoError(t, p.Execute(context.Background(), op))

	res := decodeFile(t, dst)
	assert.Equal(t, 5, res.Width)
	assert.Equal(t, 8, res.Height)
}
