package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the slice of the S3 client the store uses, extracted so tests
// can substitute a fake.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store persists records as JSON objects in a bucket. Record bodies live
// under <prefix>/records/<key>; each index entry is a zero-byte marker
// object under <prefix>/idx/<index>/<value>/<key>, so ByIndex is a single
// List call.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	st := store.NewS3Store(s3.NewFromConfig(cfg), "quill-panels", "prod")
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates a store over an existing bucket.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Store) recordKey(key string) string {
	return path.Join(s.prefix, "records", key)
}

func (s *S3Store) indexKey(index, value, key string) string {
	return path.Join(s.prefix, "idx", index, value, key)
}

func (s *S3Store) Get(ctx context.Context, key string) (*Record, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.recordKey(key)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, NotFound(key)
		}
		return nil, fmt.Errorf("s3 get %q: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %q: %w", key, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("s3 decode %q: %w", key, err)
	}
	return &rec, nil
}

func (s *S3Store) Put(ctx context.Context, rec *Record) error {
	// Replace stale index markers from a previous version first.
	if old, err := s.Get(ctx, rec.Key); err == nil {
		s.deleteMarkers(ctx, old)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("s3 encode %q: %w", rec.Key, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.recordKey(rec.Key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %q: %w", rec.Key, err)
	}
	for index, value := range rec.Indexes {
		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.indexKey(index, value, rec.Key)),
			Body:   bytes.NewReader(nil),
		})
		if err != nil {
			return fmt.Errorf("s3 index %s=%s for %q: %w", index, value, rec.Key, err)
		}
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if old, err := s.Get(ctx, key); err == nil {
		s.deleteMarkers(ctx, old)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.recordKey(key)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %q: %w", key, err)
	}
	return nil
}

func (s *S3Store) ByIndex(ctx context.Context, index, value string) ([]*Record, error) {
	prefix := path.Join(s.prefix, "idx", index, value) + "/"
	var out []*Record
	var token *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 list %s=%s: %w", index, value, err)
		}
		for _, obj := range page.Contents {
			key := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			rec, err := s.Get(ctx, key)
			if err != nil {
				if IsNotFound(err) {
					continue
				}
				return nil, err
			}
			out = append(out, rec)
		}
		if page.NextContinuationToken == nil {
			break
		}
		token = page.NextContinuationToken
	}
	return out, nil
}

// deleteMarkers best-effort removes a record's index marker objects.
func (s *S3Store) deleteMarkers(ctx context.Context, rec *Record) {
	for index, value := range rec.Indexes {
		s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.indexKey(index, value, rec.Key)),
		})
	}
}
