package fs

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcornwell/norisc/memory"
)

func TestEnumeratorFiltersIllegalNames(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(cwd) }()

	require.NoError(t, os.WriteFile("Good.Mod", nil, 0o644))
	require.NoError(t, os.WriteFile(".hidden", nil, 0o644))
	require.NoError(t, os.WriteFile("0bad", nil, 0o644))

	var en Enumerator
	require.NoError(t, en.Begin())

	var mem memory.RAM
	var seen []string
	for {
		res, err := en.Next(&mem, 0)
		require.NoError(t, err)
		if res == Invalid {
			break
		}
		buf, err := mem.ReadBytes(0, NameLength)
		require.NoError(t, err)
		nul := 0
		for nul < len(buf) && buf[nul] != 0 {
			nul++
		}
		seen = append(seen, string(buf[:nul]))
	}

	require.Equal(t, []string{"Good.Mod"}, seen)
	en.End()
}

func TestEnumeratorBeginReleasesPrevious(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(cwd) }()

	require.NoError(t, os.WriteFile("A.Mod", nil, 0o644))

	var en Enumerator
	require.NoError(t, en.Begin())

	var mem memory.RAM
	_, err = en.Next(&mem, 0)
	require.NoError(t, err)

	// Restart mid-iteration; it must begin again from the top.
	require.NoError(t, en.Begin())
	res, err := en.Next(&mem, 0)
	require.NoError(t, err)
	require.NotEqual(t, uint32(Invalid), res)
}

func TestEnumeratorEndThenNextIsEndOfEnumeration(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(cwd) }()

	var en Enumerator
	require.NoError(t, en.Begin())
	en.End()

	var mem memory.RAM
	res, err := en.Next(&mem, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(Invalid), res)
}
