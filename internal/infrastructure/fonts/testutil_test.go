package fonts

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"sync"
	"unicode/utf16"
)

type runResult struct {
	out string
	err error
}

// fakeRunner answers commands from a table keyed by "name arg1 arg2...".
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]runResult
	calls   map[string]int
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: map[string]runResult{}, calls: map[string]int{}}
}

func (f *fakeRunner) on(out string, err error, name string, args ...string) *fakeRunner {
	f.results[commandKey(name, args)] = runResult{out: out, err: err}
	return f
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := commandKey(name, args)
	f.calls[name]++
	if r, ok := f.results[key]; ok {
		return r.out, r.err
	}
	return "", errors.New("command not found: " + name)
}

func (f *fakeRunner) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func commandKey(name string, args []string) string {
	return name + " " + strings.Join(args, " ")
}

type nameRecord struct {
	platform uint16
	nameID   uint16
	value    string
}

func encodeName(r nameRecord) []byte {
	if r.platform == platformWindows {
		var b bytes.Buffer
		for _, u := range utf16.Encode([]rune(r.value)) {
			_ = binary.Write(&b, binary.BigEndian, u)
		}
		return b.Bytes()
	}
	out := make([]byte, 0, len(r.value))
	for _, ch := range r.value {
		out = append(out, byte(ch))
	}
	return out
}

// buildNameTable lays out a format-0 name table.
func buildNameTable(records []nameRecord) []byte {
	var head, data bytes.Buffer
	w := func(v uint16) { _ = binary.Write(&head, binary.BigEndian, v) }

	w(0)
	w(uint16(len(records)))
	w(uint16(6 + 12*len(records)))
	for _, r := range records {
		s := encodeName(r)
		w(r.platform)
		w(0)
		w(0)
		w(r.nameID)
		w(uint16(len(s)))
		w(uint16(data.Len()))
		data.Write(s)
	}
	head.Write(data.Bytes())
	return head.Bytes()
}

// buildFace returns a single-table sfnt face placed at base within its file.
func buildFace(base int, records []nameRecord) []byte {
	table := buildNameTable(records)

	var b bytes.Buffer
	w16 := func(v uint16) { _ = binary.Write(&b, binary.BigEndian, v) }
	w32 := func(v uint32) { _ = binary.Write(&b, binary.BigEndian, v) }

	w32(0x00010000)
	w16(1)
	w16(0)
	w16(0)
	w16(0)
	b.WriteString("name")
	w32(0)
	w32(uint32(base + 12 + 16))
	w32(uint32(len(table)))
	b.Write(table)
	return b.Bytes()
}

// buildCollection packs one face per family into a .ttc.
func buildCollection(families []string) []byte {
	headerLen := 12 + 4*len(families)
	var faces [][]byte
	offsets := make([]int, len(families))
	pos := headerLen
	for i, fam := range families {
		offsets[i] = pos
		face := buildFace(pos, []nameRecord{{platformWindows, nameIDFamily, fam}})
		faces = append(faces, face)
		pos += len(face)
	}

	var b bytes.Buffer
	b.WriteString("ttcf")
	_ = binary.Write(&b, binary.BigEndian, uint32(0x00010000))
	_ = binary.Write(&b, binary.BigEndian, uint32(len(families)))
	for _, off := range offsets {
		_ = binary.Write(&b, binary.BigEndian, uint32(off))
	}
	for _, f := range faces {
		b.Write(f)
	}
	return b.Bytes()
}
