package colorbook

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/esimov/colorbook/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcessor() *Processor {
	return &Processor{
		Script: Script{
			Fills: []FillOp{{At: Pt(100, 100), Color: "#ff0000"}},
		},
		Spinner: utils.NewSpinner("", time.Millisecond*10, false),
	}
}

func TestProcessor_Process(t *testing.T) {
	assert := assert.New(t)
	p := newProcessor()

	var out bytes.Buffer
	require.NoError(t, p.Process(strings.NewReader(pageSVG), &out))

	img, err := png.Decode(&out)
	require.NoError(t, err)
	assert.Equal(800, img.Bounds().Dx())
	assert.Equal(600, img.Bounds().Dy())
	assert.Equal(color.NRGBAModel.Convert(color.NRGBA{R: 255, A: 255}), color.NRGBAModel.Convert(img.At(100, 100)))

	err = p.Process(strings.NewReader(`<svg><g></svg>`), &out)
	var perr *ParseError
	assert.ErrorAs(err, &perr)
}

func TestProcessor_ExecuteFile(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "page.svg")
	require.NoError(t, os.WriteFile(src, []byte(pageSVG), 0644))

	p := newProcessor()
	dst := filepath.Join(dir, "page.jpg")
	assert.NoError(p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-"}))
	fi, err := os.Stat(dst)
	assert.NoError(err)
	assert.NotZero(fi.Size())

	assert.Error(p.Execute(&Ops{Src: src, Dst: filepath.Join(dir, "page.gif"), PipeName: "-"}))
	assert.Error(p.Execute(&Ops{Src: filepath.Join(dir, "missing.svg"), Dst: dst, PipeName: "-"}))
}

func TestProcessor_ExecuteDir(t *testing.T) {
	assert := assert.New(t)
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	for _, name := range []string{"one.svg", "two.SVG", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte(pageSVG), 0644))
	}

	p := newProcessor()
	assert.NoError(p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Workers: 2}))

	for _, name := range []string{"one.png", "two.png"} {
		_, err := os.Stat(filepath.Join(dst, name))
		assert.NoError(err, name)
	}
	_, err := os.Stat(filepath.Join(dst, "notes.png"))
	assert.True(os.IsNotExist(err))

	// A broken page is reported without stopping the others.
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.svg"), []byte("<svg>"), 0644))
	assert.Error(p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Workers: 2}))
	_, err = os.Stat(filepath.Join(dst, "broken.png"))
	assert.True(os.IsNotExist(err))
}

func TestProcessor_ExecuteNestedDir(t *testing.T) {
	assert := assert.New(t)
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	for _, name := range []string{"page.svg", "a/page.svg", "b/page.svg", "b/c/page.svg"} {
		path := filepath.Join(src, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(pageSVG), 0644))
	}

	p := newProcessor()
	require.NoError(t, p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Workers: 4}))

	// Pages sharing a base name keep their own output.
	for _, name := range []string{"page.png", "a/page.png", "b/page.png", "b/c/page.png"} {
		fi, err := os.Stat(filepath.Join(dst, filepath.FromSlash(name)))
		if assert.NoError(err, name) {
			assert.NotZero(fi.Size(), name)
		}
	}
}

func TestDestPath(t *testing.T) {
	assert := assert.New(t)
	root := "pages"
	dest := t.TempDir()

	out, err := destPath(root, dest, filepath.Join(root, "zoo", "lion.svg"), JPEG)
	require.NoError(t, err)
	assert.Equal(filepath.Join(dest, "zoo", "lion.jpeg"), out)
	fi, err := os.Stat(filepath.Join(dest, "zoo"))
	require.NoError(t, err)
	assert.True(fi.IsDir())

	out, err = destPath(root, dest, filepath.Join(root, "cat.svg"), PNG)
	require.NoError(t, err)
	assert.Equal(filepath.Join(dest, "cat.png"), out)
}

func TestIsValidExtension(t *testing.T) {
	assert.True(t, isValidExtension(".pdf", Extensions))
	assert.False(t, isValidExtension(".svg", Extensions))
}
