// Package sfload resolves a soundfont reference — a local filesystem
// path or an s3://bucket/key URI — to its raw bytes, grounded on the
// teacher pack's AWS config bootstrap style
// (Conceptual-Machines-magda-api's internal/metrics.NewClient).
package sfload

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Resolve reads ref's bytes: a local file path if ref has no s3://
// scheme, or the object at the given bucket/key otherwise.
func Resolve(ctx context.Context, ref string) ([]byte, error) {
	bucket, key, ok := parseS3URI(ref)
	if !ok {
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("sfload: reading local soundfont %q: %w", ref, err)
		}
		return data, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("sfload: loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("sfload: fetching s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("sfload: reading s3://%s/%s body: %w", bucket, key, err)
	}
	return data, nil
}

func parseS3URI(ref string) (bucket, key string, ok bool) {
	const prefix = "s3://"
	if !strings.HasPrefix(ref, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(ref, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
