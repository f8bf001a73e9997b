package codec

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Beijukabruno/audio-anonymization-platform/audio"
	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

// S3Loader loads surrogate clips addressed as s3://bucket/key by fetching
// the object to a temporary file and decoding it there; ffmpeg itself has
// no s3 protocol.
type S3Loader struct {
	client *s3.Client
}

// NewS3Loader loads the default AWS configuration and returns a loader.
func NewS3Loader(ctx context.Context) (*S3Loader, *log.Status) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, log.Error(ctx, 500, err, `Error loading AWS configuration`)
	}
	return &S3Loader{client: s3.NewFromConfig(cfg)}, nil
}

// Load fetches and decodes one clip.
func (l *S3Loader) Load(ctx context.Context, path string) (audio.Buffer, *log.Status) {
	var result audio.Buffer
	bucket, key, status := SplitS3Path(ctx, path)
	if status != nil {
		return result, status
	}
	output, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return result, log.Error(ctx, 500, err, `Error fetching surrogate object`, path)
	}
	defer output.Body.Close()
	tmp, err := os.CreateTemp(``, `surrogate-*`+filepath.Ext(key))
	if err != nil {
		return result, log.Error(ctx, 500, err, `Error creating temp file for`, path)
	}
	defer os.Remove(tmp.Name())
	_, err = io.Copy(tmp, output.Body)
	closeErr := tmp.Close()
	if err != nil {
		return result, log.Error(ctx, 500, err, `Error writing surrogate object`, path)
	}
	if closeErr != nil {
		return result, log.Error(ctx, 500, closeErr, `Error writing surrogate object`, path)
	}
	return Decode(ctx, tmp.Name())
}

// SplitS3Path splits an s3://bucket/key address into its parts.
func SplitS3Path(ctx context.Context, path string) (string, string, *log.Status) {
	trimmed, ok := strings.CutPrefix(path, `s3://`)
	if !ok {
		return ``, ``, log.ErrorNoErr(ctx, 400, `Not an s3 path`, path)
	}
	bucket, key, ok := strings.Cut(trimmed, `/`)
	if !ok || bucket == `` || key == `` {
		return ``, ``, log.ErrorNoErr(ctx, 400, `Malformed s3 path`, path)
	}
	return bucket, key, nil
}
