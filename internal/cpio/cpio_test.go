package cpio

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeEntry(buf *bytes.Buffer, name string, mode uint32, data []byte) {
	namesize := len(name) + 1 // trailing NUL
	header := fmt.Sprintf("070701%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x",
		0,          // inode
		mode,       // mode
		0, 0,       // uid, gid
		1,          // nlink
		0,          // mtime
		len(data),  // filesize
		0, 0, 0, 0, // devmajor, devminor, rdevmajor, rdevminor
		namesize, // namesize
		0,        // check
	)
	buf.WriteString(header)
	buf.WriteString(name)
	buf.WriteByte(0)
	pad(buf, headerLen+namesize)

	buf.Write(data)
	pad(buf, len(data))
}

// buildNewc assembles a minimal valid newc archive from (name, data)
// pairs, always appending the TRAILER!!! entry.
func buildNewc(files [][2]string) []byte {
	var buf bytes.Buffer
	for _, f := range files {
		writeEntry(&buf, f[0], 0o100644, []byte(f[1]))
	}
	writeEntry(&buf, trailerFilename, 0, nil)
	return buf.Bytes()
}

func pad(buf *bytes.Buffer, n int) {
	if rem := n % 4; rem != 0 {
		buf.Write(make([]byte, 4-rem))
	}
}

func gzipBytes(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRead_RoundTrip(t *testing.T) {
	raw := buildNewc([][2]string{
		{"obj/geo1/a", "hello"},
		{"obj/geo1/b", "world!!"},
	})

	entries, err := Read(raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "obj/geo1/a", entries[0].Path)
	require.Equal(t, []byte("hello"), entries[0].Data)
	require.Equal(t, "obj/geo1/b", entries[1].Path)
	require.Equal(t, []byte("world!!"), entries[1].Data)
}

func TestRead_Gzipped(t *testing.T) {
	raw := buildNewc([][2]string{{"a", "x"}})
	entries, err := Read(gzipBytes(t, raw))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRead_HoudiniPrefix(t *testing.T) {
	raw := buildNewc(nil)
	gz := gzipBytes(t, raw)
	prefixed := append([]byte{0x01, 0x02, 0x03, 0x04}, gz...)

	entries, err := Read(prefixed)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRead_NoMagic(t *testing.T) {
	_, err := Read([]byte("not an archive at all, just plain garbage text"))
	require.Error(t, err)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, ReasonNoMagic, fe.Reason)
}

func TestRead_BadHeaderHex(t *testing.T) {
	raw := buildNewc([][2]string{{"a", "x"}})
	// Corrupt the inode field (first 8 hex chars after the 6-byte magic).
	copy(raw[6:14], []byte("zzzzzzzz"))

	_, err := Read(raw)
	require.Error(t, err)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, ReasonBadHeader, fe.Reason)
}

func TestRead_TruncatedPayloadIsSilent(t *testing.T) {
	raw := buildNewc([][2]string{{"a", "hello world"}})
	// Cut off partway through the payload of the only real entry.
	truncated := raw[:headerLen+2+2+5] // header + "a\0" (already 4-aligned) + 7 of the 11 payload bytes

	entries, err := Read(truncated)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRead_ResyncsPastGarbage(t *testing.T) {
	var buf bytes.Buffer
	writeEntry(&buf, "a", 0o100644, []byte("1"))
	buf.Write([]byte{0xDE, 0xAD, 0xBE}) // junk misaligning the next header
	writeEntry(&buf, "b", 0o100644, []byte("2"))
	writeEntry(&buf, trailerFilename, 0, nil)

	entries, err := Read(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].Path)
	require.Equal(t, "b", entries[1].Path)
}
