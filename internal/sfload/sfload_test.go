package sfload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveReadsLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "piano.sf2")
	want := []byte("not a real soundfont, just test bytes")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	got, err := Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveMissingLocalFileErrors(t *testing.T) {
	_, err := Resolve(context.Background(), filepath.Join(t.TempDir(), "missing.sf2"))
	if err == nil {
		t.Fatal("expected an error for a missing local path")
	}
}

func TestParseS3URI(t *testing.T) {
	cases := []struct {
		ref        string
		wantBucket string
		wantKey    string
		wantOK     bool
	}{
		{"s3://my-bucket/fonts/piano.sf2", "my-bucket", "fonts/piano.sf2", true},
		{"s3://my-bucket/piano.sf2", "my-bucket", "piano.sf2", true},
		{"/local/path/piano.sf2", "", "", false},
		{"s3://missing-key/", "", "", false},
		{"s3:///missing-bucket", "", "", false},
	}
	for _, c := range cases {
		bucket, key, ok := parseS3URI(c.ref)
		if ok != c.wantOK || bucket != c.wantBucket || key != c.wantKey {
			t.Errorf("parseS3URI(%q) = (%q, %q, %v), want (%q, %q, %v)",
				c.ref, bucket, key, ok, c.wantBucket, c.wantKey, c.wantOK)
		}
	}
}
