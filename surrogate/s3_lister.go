package surrogate

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

// S3Lister serves a surrogate library stored in an S3 bucket using the same
// directory layout as the filesystem catalog, with key prefixes in place of
// directories.
type S3Lister struct {
	client *s3.Client
	bucket string
}

// NewS3Lister loads the default AWS configuration and returns a lister
// over the given bucket.
func NewS3Lister(ctx context.Context, bucket string) (*S3Lister, *log.Status) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, log.Error(ctx, 500, err, `Error loading AWS configuration`)
	}
	return &S3Lister{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// ListCandidates returns the audio objects directly under the given prefix.
// Objects in deeper sub-prefixes belong to other probes and are excluded.
func (s *S3Lister) ListCandidates(ctx context.Context, path string) ([]Asset, *log.Status) {
	prefix := strings.Trim(strings.ReplaceAll(path, `\`, `/`), `/`) + `/`
	var assets []Asset
	var token *string
	for {
		output, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String(`/`),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, log.Error(ctx, 500, err, `Error listing surrogate objects`, prefix)
		}
		for _, object := range output.Contents {
			key := aws.ToString(object.Key)
			name := strings.TrimPrefix(key, prefix)
			if name == `` || !IsAudioFile(name) {
				continue
			}
			assets = append(assets, Asset{Path: `s3://` + s.bucket + `/` + key, Name: name})
		}
		if output.NextContinuationToken == nil {
			break
		}
		token = output.NextContinuationToken
	}
	return assets, nil
}
