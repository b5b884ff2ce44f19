package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeZip(t *testing.T, name string, members map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	zw := zip.NewWriter(f)
	for member, content := range members {
		w, err := zw.Create(member)
		if err != nil {
			t.Fatalf("zip member %s: %v", member, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write member %s: %v", member, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestOpenSingleMember(t *testing.T) {
	path := writeZip(t, "GEN_TEST.zip", map[string]string{
		"report.txt": "[Header]\r\nline two\nline three\n",
	})
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.MemberName() != "report.txt" {
		t.Fatalf("member = %q", a.MemberName())
	}

	first, err := a.FirstLine()
	if err != nil {
		t.Fatalf("FirstLine: %v", err)
	}
	if first != "[Header]" {
		t.Fatalf("first line = %q, want [Header] with CR stripped", first)
	}
}

func TestOpenRejectsMultiMember(t *testing.T) {
	path := writeZip(t, "GEN_TWO.zip", map[string]string{
		"a.txt": "one",
		"b.txt": "two",
	})
	_, err := Open(path)
	if !errors.Is(err, ErrMultiMember) {
		t.Fatalf("err = %v, want ErrMultiMember", err)
	}
}

func TestOpenRejectsEmpty(t *testing.T) {
	path := writeZip(t, "GEN_EMPTY.zip", nil)
	_, err := Open(path)
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

func TestScanSupportsMultiplePasses(t *testing.T) {
	path := writeZip(t, "MAP_TEST.zip", map[string]string{
		"map.txt": "Index\tName\n1\tS1\n2\tS2\n",
	})
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for pass := 0; pass < 2; pass++ {
		var lines []string
		if err := a.Scan(func(line string) error {
			lines = append(lines, line)
			return nil
		}); err != nil {
			t.Fatalf("pass %d: %v", pass, err)
		}
		if len(lines) != 3 || lines[0] != "Index\tName" {
			t.Fatalf("pass %d lines = %v", pass, lines)
		}
	}
}

func TestScanPropagatesCallbackError(t *testing.T) {
	path := writeZip(t, "MAP_ERR.zip", map[string]string{"m.txt": "a\nb\n"})
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	boom := errors.New("boom")
	if err := a.Scan(func(string) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
