package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"medtrack/internal/config"
	"medtrack/internal/medtrack"
)

// versionMetadataKey is the S3 object metadata key carrying the snapshot
// version stamp.
const versionMetadataKey = "medtrack-version"

// S3Vault stores encrypted database snapshots in an S3 bucket (or any
// S3-compatible store when an endpoint is configured). The version stamp
// travels as object metadata on the snapshot itself.
type S3Vault struct {
	name     string
	bucket   string
	prefix   string
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Vault creates an S3 vault from configuration. Credentials come from
// the config when set, otherwise from the ambient AWS credential chain.
func NewS3Vault(cfg config.VaultConfig) (*S3Vault, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			// S3-compatible stores generally require path-style addressing.
			o.UsePathStyle = true
		}
	})

	return &S3Vault{
		name:     cfg.Name,
		bucket:   cfg.S3Bucket,
		prefix:   cfg.S3Prefix,
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

// snapshotKey returns the object key for a profile's snapshot.
func (v *S3Vault) snapshotKey(profileID string) string {
	key := "snapshots/" + profileID + ".db.age"
	if v.prefix != "" {
		return v.prefix + "/" + key
	}
	return key
}

// PutSnapshot uploads a snapshot for a profile, replacing any previous one.
func (v *S3Vault) PutSnapshot(profileID string, r io.Reader, size int64, version int64) error {
	_, err := v.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket:        aws.String(v.bucket),
		Key:           aws.String(v.snapshotKey(profileID)),
		Body:          r,
		ContentLength: aws.Int64(size),
		Metadata: map[string]string{
			versionMetadataKey: strconv.FormatInt(version, 10),
		},
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot to s3: %w", err)
	}
	return nil
}

// GetSnapshot downloads the stored snapshot for a profile and writes it to w.
func (v *S3Vault) GetSnapshot(profileID string, w io.Writer) error {
	out, err := v.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(v.snapshotKey(profileID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return fmt.Errorf("no snapshot stored for profile: %s", profileID)
		}
		return fmt.Errorf("downloading snapshot from s3: %w", err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading snapshot body: %w", err)
	}
	return nil
}

// SnapshotVersion reads the version stamp from the snapshot's object
// metadata. Returns 0 if no snapshot has been stored.
func (v *S3Vault) SnapshotVersion(profileID string) (int64, error) {
	out, err := v.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(v.snapshotKey(profileID)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("checking snapshot metadata: %w", err)
	}

	raw, ok := out.Metadata[versionMetadataKey]
	if !ok {
		return 0, nil
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version metadata: %w", err)
	}
	return version, nil
}

// ValidateSetup verifies the bucket exists and is reachable with the
// configured credentials.
func (v *S3Vault) ValidateSetup() error {
	_, err := v.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(v.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", v.bucket, err)
	}
	return nil
}

// Compile-time check that S3Vault implements medtrack.Vault
var _ medtrack.Vault = (*S3Vault)(nil)
