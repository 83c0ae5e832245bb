package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "1700-ab-file.pdf", want: "1700-ab-file.pdf"},
		{name: "simple prefix", prefix: "root", key: "1700-ab-file.pdf", want: "root/1700-ab-file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "1700-ab-file.pdf", want: "root/1700-ab-file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/1700-ab-file.pdf", want: "root/1700-ab-file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "1700-ab-file.pdf", want: "root/sub/1700-ab-file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestStripPrefixInvertsApplyPrefix(t *testing.T) {
	t.Parallel()

	for _, prefix := range []string{"", "root", "root/sub"} {
		key := "1700-ab-cover.docx"
		if got := stripPrefix(prefix, applyPrefix(prefix, key)); got != key {
			t.Fatalf("stripPrefix(%q) = %q, want %q", prefix, got, key)
		}
	}
}

func TestPresignGetIncludesKeyAndExpiry(t *testing.T) {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
	}
	client := s3.NewFromConfig(cfg)
	store := &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  "bucket",
		prefix:  "uploads",
	}

	raw, err := store.PresignGet(context.Background(), "1700-ab-resume.pdf", 5*time.Minute)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if !strings.HasSuffix(parsed.Path, "/uploads/1700-ab-resume.pdf") {
		t.Fatalf("unexpected presigned path: %s", parsed.Path)
	}
	if got := parsed.Query().Get("X-Amz-Expires"); got != "300" {
		t.Fatalf("expected X-Amz-Expires=300, got %q", got)
	}
}
