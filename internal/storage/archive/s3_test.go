// internal/storage/archive/s3_test.go
package archive

import (
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestS3Source_ImplementsSource(t *testing.T) {
	var _ Source = (*S3Source)(nil)
}

func TestS3Source_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "prices/SPY.csv", "prices/SPY.csv"},
		{"archive", "SPY.csv", "archive/SPY.csv"},
		{"/archive/", "/SPY.csv", "archive/SPY.csv"},
	}

	for _, tt := range tests {
		s, err := NewS3(S3Config{Bucket: "prices", Prefix: tt.prefix})
		if err != nil {
			t.Fatalf("NewS3: %v", err)
		}
		if got := s.key(tt.path); got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
		if rel := s.relative(s.key(tt.path)); rel != strings.TrimPrefix(tt.path, "/") {
			t.Errorf("relative(%q) = %q", s.key(tt.path), rel)
		}
	}
}

func TestS3Source_RequiresBucket(t *testing.T) {
	if _, err := NewS3(S3Config{}); err == nil {
		t.Error("expected error for missing bucket")
	}
}

func TestS3Source_Location(t *testing.T) {
	s, _ := NewS3(S3Config{Bucket: "prices", Prefix: "daily/"})
	if got := s.Location(); got != "s3://prices/daily" {
		t.Errorf("Location() = %q", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(&types.NotFound{}) {
		t.Error("typed NotFound should match")
	}
	if !isNotFound(&types.NoSuchKey{}) {
		t.Error("NoSuchKey should match")
	}
	if isNotFound(errors.New("access denied")) {
		t.Error("unrelated error should not match")
	}
}
