package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	l := NewLog(dir)

	type rec struct {
		Actor  string `json:"actor"`
		ItemID int    `json:"item_id"`
	}

	if err := l.Write(rec{Actor: "edgar", ItemID: 0x2777}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.Write(rec{Actor: "edgar", ItemID: 0x2778}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "audit", "design-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("log files = %v, err = %v", matches, err)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec.IOReadCloser())
	var got []rec
	for sc.Scan() {
		var r rec
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		got = append(got, r)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 || got[0].ItemID != 0x2777 || got[1].ItemID != 0x2778 {
		t.Fatalf("read back %+v", got)
	}
}

func TestCloseWithoutWrites(t *testing.T) {
	l := NewLog(t.TempDir())
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
