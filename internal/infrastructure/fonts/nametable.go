package fonts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	// maxNameTableBytes caps how much of a name table is read.
	maxNameTableBytes = 65536
	// maxCollectionFaces caps how many faces of a .ttc are inspected.
	maxCollectionFaces = 20

	nameIDFamily    = 1
	platformMac     = 1
	platformWindows = 3
)

var errOutOfBounds = errors.New("read out of bounds")

// binaryReader is a big-endian cursor over a byte slice. Every read is bounds checked.
type binaryReader struct {
	buf []byte
	pos int
}

func newBinaryReader(buf []byte) *binaryReader {
	return &binaryReader{buf: buf}
}

func (r *binaryReader) Len() int {
	return len(r.buf)
}

func (r *binaryReader) Seek(off int) error {
	if off < 0 || off > len(r.buf) {
		return errOutOfBounds
	}
	r.pos = off
	return nil
}

func (r *binaryReader) Skip(n int) error {
	return r.Seek(r.pos + n)
}

func (r *binaryReader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, errOutOfBounds
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *binaryReader) Uint16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (r *binaryReader) Uint32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func (r *binaryReader) Tag() (string, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readSection reads up to n bytes at off. A short read at EOF is not an error.
func readSection(ra io.ReaderAt, off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := ra.ReadAt(buf, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:read], nil
}

// readFamilyNames returns the family names (name ID 1) stored in a font file.
// Collections yield the union over their first faces.
func readFamilyNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		return readCollectionFamilyNames(f)
	}

	name, err := readFaceFamilyName(f, 0)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	return []string{name}, nil
}

func readCollectionFamilyNames(ra io.ReaderAt) ([]string, error) {
	header, err := readSection(ra, 0, 12)
	if err != nil {
		return nil, err
	}
	r := newBinaryReader(header)
	tag, err := r.Tag()
	if err != nil {
		return nil, err
	}
	if tag != "ttcf" {
		return nil, fmt.Errorf("not a font collection: %q", tag)
	}
	if err := r.Seek(8); err != nil {
		return nil, err
	}
	numFonts, err := r.Uint32()
	if err != nil {
		return nil, err
	}

	faces := int(numFonts)
	if faces > maxCollectionFaces {
		faces = maxCollectionFaces
	}
	offsets, err := readSection(ra, 12, faces*4)
	if err != nil {
		return nil, err
	}
	or := newBinaryReader(offsets)

	var names []string
	seen := make(map[string]bool)
	for i := 0; i < faces; i++ {
		off, err := or.Uint32()
		if err != nil {
			break
		}
		name, err := readFaceFamilyName(ra, int64(off))
		if err != nil || name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// readFaceFamilyName parses the sfnt face starting at offset. It returns "" with
// no error when the face simply has no usable family record.
func readFaceFamilyName(ra io.ReaderAt, offset int64) (string, error) {
	header, err := readSection(ra, offset, 12)
	if err != nil {
		return "", err
	}
	r := newBinaryReader(header)
	if err := r.Seek(4); err != nil {
		return "", err
	}
	numTables, err := r.Uint16()
	if err != nil {
		return "", err
	}

	dir, err := readSection(ra, offset+12, int(numTables)*16)
	if err != nil {
		return "", err
	}
	dr := newBinaryReader(dir)

	var tableOffset, tableLength uint32
	for i := 0; i < int(numTables); i++ {
		if err := dr.Seek(i * 16); err != nil {
			return "", err
		}
		tag, err := dr.Tag()
		if err != nil {
			return "", err
		}
		if tag != "name" {
			continue
		}
		if err := dr.Skip(4); err != nil { // checksum
			return "", err
		}
		if tableOffset, err = dr.Uint32(); err != nil {
			return "", err
		}
		if tableLength, err = dr.Uint32(); err != nil {
			return "", err
		}
		break
	}
	if tableOffset == 0 || tableLength == 0 {
		return "", nil
	}

	readLen := int(tableLength)
	if readLen > maxNameTableBytes {
		readLen = maxNameTableBytes
	}
	table, err := readSection(ra, int64(tableOffset), readLen)
	if err != nil {
		return "", err
	}
	return parseNameTable(table)
}

// nameEntry - одна запись каталога таблицы name
type nameEntry struct {
	platformID uint16
	nameID     uint16
	length     uint16
	offset     uint16
}

func readNameEntry(r *binaryReader, at int) (nameEntry, error) {
	var e nameEntry
	if err := r.Seek(at); err != nil {
		return e, err
	}
	var err error
	if e.platformID, err = r.Uint16(); err != nil {
		return e, err
	}
	if err = r.Skip(4); err != nil { // encoding, language
		return e, err
	}
	if e.nameID, err = r.Uint16(); err != nil {
		return e, err
	}
	if e.length, err = r.Uint16(); err != nil {
		return e, err
	}
	if e.offset, err = r.Uint16(); err != nil {
		return e, err
	}
	return e, nil
}

// parseNameTable picks the family name. A Windows (UTF-16BE) record wins as soon
// as it is found; a Macintosh (Latin-1) record is kept only until then.
func parseNameTable(table []byte) (string, error) {
	r := newBinaryReader(table)
	if err := r.Skip(2); err != nil { // format
		return "", err
	}
	count, err := r.Uint16()
	if err != nil {
		return "", err
	}
	stringOffset, err := r.Uint16()
	if err != nil {
		return "", err
	}

	family := ""
	for i := 0; i < int(count); i++ {
		rec, err := readNameEntry(r, 6+i*12)
		if err != nil {
			// count claims more records than the table holds
			break
		}
		if rec.nameID != nameIDFamily {
			continue
		}
		if err := r.Seek(int(stringOffset) + int(rec.offset)); err != nil {
			continue
		}
		raw, err := r.Bytes(int(rec.length))
		if err != nil {
			continue
		}

		switch {
		case rec.platformID == platformWindows:
			decoded, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
			if err != nil {
				continue
			}
			return string(decoded), nil
		case rec.platformID == platformMac && family == "":
			decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
			if err != nil {
				continue
			}
			family = string(decoded)
		}
	}

	return family, nil
}
