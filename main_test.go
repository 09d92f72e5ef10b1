package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ossyrian/wadlumper/internal/config"
	"github.com/ossyrian/wadlumper/internal/wad2"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, data := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	}
}

func TestPackListExtractVerify(t *testing.T) {
	dir := t.TempDir()
	fs := afero.NewOsFs()
	writeFiles(t, dir, map[string]string{
		"lumps/palette.lmp": strings.Repeat("p", 768),
		"lumps/conback.lmp": strings.Repeat("c", 100),
		"lumps/notes.txt":   "ignored",
		"extra.bin":         "xyz",
	})
	first := filepath.Join(dir, "first.wad")

	var out bytes.Buffer
	err := runPack(&config.Config{Output: first, LumpExt: ".lmp"}, fs,
		[]string{filepath.Join(dir, "lumps"), "pause=" + filepath.Join(dir, "extra.bin")}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "3 lumps, directory at offset 883")

	// edit in place: drop PALETTE, add one more lump
	writeFiles(t, dir, map[string]string{"more/zz.lmp": "zz"})
	out.Reset()
	err = runPack(&config.Config{
		Base:    first,
		Output:  first,
		Remove:  []string{"palette", "missing"},
		LumpExt: ".lmp",
	}, fs, []string{filepath.Join(dir, "more")}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "3 lumps, directory at offset 117")

	out.Reset()
	require.NoError(t, runList(&config.Config{}, fs, first, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"NAME", "SIZE", "OFFSET"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"CONBACK", "100", "12"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"PAUSE", "3", "112"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"ZZ", "2", "115"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"3", "lumps", "105"}, strings.Fields(lines[4]))

	out.Reset()
	require.NoError(t, runList(&config.Config{SortByName: true}, fs, first, &out))
	lines = strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, "CONBACK", strings.Fields(lines[1])[0])
	assert.Equal(t, "ZZ", strings.Fields(lines[3])[0])

	out.Reset()
	extractDir := filepath.Join(dir, "out")
	require.NoError(t, runExtract(&config.Config{ExtractDir: extractDir}, fs, first, []string{"pause"}, &out))
	data, err := os.ReadFile(filepath.Join(extractDir, "PAUSE.lmp"))
	require.NoError(t, err)
	assert.Equal(t, "xyz", string(data))

	out.Reset()
	require.NoError(t, runVerify(fs, first, &out))
	assert.Contains(t, out.String(), "ok, 3 lumps, 105 bytes")
}

func TestPackDuplicateAborts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a/sky.lmp": "one",
		"b/SKY.lmp": "two",
	})
	output := filepath.Join(dir, "out.wad")

	err := runPack(&config.Config{Output: output, LumpExt: ".lmp"}, afero.NewOsFs(),
		[]string{filepath.Join(dir, "a"), filepath.Join(dir, "b")}, &bytes.Buffer{})
	require.ErrorIs(t, err, wad2.ErrDuplicateName)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPackEmpty(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.wad")

	err := runPack(&config.Config{Output: output}, afero.NewOsFs(), nil, &bytes.Buffer{})
	require.ErrorIs(t, err, wad2.ErrEmptyArchive)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPackDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.lmp": "abcd"})
	output := filepath.Join(dir, "out.wad")

	var out bytes.Buffer
	err := runPack(&config.Config{Output: output, DryRun: true}, afero.NewOsFs(),
		[]string{filepath.Join(dir, "a.lmp")}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "would write")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtractUnknownLump(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.lmp": "a"})
	wad := filepath.Join(dir, "a.wad")
	fs := afero.NewOsFs()

	require.NoError(t, runPack(&config.Config{Output: wad}, fs, []string{filepath.Join(dir, "a.lmp")}, &bytes.Buffer{}))

	err := runExtract(&config.Config{ExtractDir: dir}, fs, wad, []string{"b"}, &bytes.Buffer{})
	require.ErrorIs(t, err, wad2.ErrSourceUnavailable)
}

func TestListBadArchive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bad.wad": "PACK\x00\x00\x00\x00\x00\x00\x00\x00"})

	err := runList(&config.Config{}, afero.NewOsFs(), filepath.Join(dir, "bad.wad"), &bytes.Buffer{})
	require.ErrorIs(t, err, wad2.ErrFormat)
}

func TestLumpFileName(t *testing.T) {
	assert.Equal(t, "*04WATER1.lmp", lumpFileName("*04WATER1"))
	assert.Equal(t, "A_B.lmp", lumpFileName("A/B"))
}
