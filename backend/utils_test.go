package backend

import (
	"path/filepath"
	"testing"
)

func TestTimeStringFromMsec(t *testing.T) {
	cases := []struct {
		msec int
		want string
	}{
		{0, "00:00.000"},
		{999, "00:00.999"},
		{1000, "00:01.000"},
		{61001, "01:01.001"},
		{3599999, "59:59.999"},
	}

	for _, c := range cases {
		if got := TimeStringFromMsec(c.msec); got != c.want {
			t.Errorf("TimeStringFromMsec(%d) = %q, want %q", c.msec, got, c.want)
		}
	}
}

func TestFileHashSHA1(t *testing.T) {
	// regression.bin contains exactly "abc"
	hash, err := FileHashSHA1(filepath.Join("testdata", "regression.bin"))
	if err != nil {
		t.Fatalf("FileHashSHA1 failed: %v", err)
	}
	want := "a9993e364706816aba3e25717850c26c9cd0d89d"
	if hash != want {
		t.Errorf("FileHashSHA1 = %q, want %q", hash, want)
	}
}

func TestFileHashSHA1Missing(t *testing.T) {
	if _, err := FileHashSHA1(filepath.Join("testdata", "does_not_exist.bin")); err == nil {
		t.Error("expected error for missing file")
	}
}
