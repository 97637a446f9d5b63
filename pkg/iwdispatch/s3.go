package iwdispatch

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/infraweave-io/lambda-api/pkg/iwtypes"
	"github.com/pkg/errors"
)

const (
	uploadPartSize = 5 * 1024 * 1024 // also the multipart threshold

	defaultPresignExpiry = 1 * time.Hour
	maxPresignExpiry     = 7 * 24 * time.Hour // SigV4 limit
)

// one part at a time: bounded memory, and no racing parts on the destination object
func streamingUploadOptions(u *s3manager.Uploader) {
	u.PartSize = uploadPartSize
	u.Concurrency = 1
}

func (d *Dispatcher) uploadFileBase64(ctx context.Context, event iwtypes.Event) (interface{}, error) {
	payload := iwtypes.UploadFileBase64Payload{}
	if err := decodeData(event, &payload); err != nil {
		return nil, err
	}

	bucket, err := d.conf.ResolveBucket(payload.BucketName)
	if err != nil {
		return nil, err
	}

	body, err := base64.StdEncoding.DecodeString(payload.Base64Content)
	if err != nil {
		return nil, errors.Wrap(err, "upload_file_base64: base64_content")
	}

	out, err := d.svc.S3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(payload.Key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// the existence check does not compare content with the source. callers use this for
// cheap idempotent retries.
func (d *Dispatcher) uploadFileUrl(ctx context.Context, event iwtypes.Event) (interface{}, error) {
	payload := iwtypes.UploadFileUrlPayload{}
	if err := decodeData(event, &payload); err != nil {
		return nil, err
	}

	bucket, err := d.conf.ResolveBucket(payload.BucketName)
	if err != nil {
		return nil, err
	}

	exists, err := d.objectExists(ctx, bucket, payload.Key)
	if err != nil {
		return nil, err
	}

	if exists {
		d.logl.Info.Printf("key %s already exists in bucket %s, skipping upload", payload.Key, bucket)

		return &iwtypes.UploadFileUrlResult{ObjectAlreadyExists: true}, nil
	}

	source, err := d.svc.FetchUrl(ctx, payload.Url)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	if _, err := d.svc.Uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(payload.Key),
		Body:   source,
	}, streamingUploadOptions); err != nil {
		return nil, err
	}

	return &iwtypes.UploadFileUrlResult{ObjectAlreadyExists: false}, nil
}

// "not found" is an answer, anything else is an error
func (d *Dispatcher) objectExists(ctx context.Context, bucket string, key string) (bool, error) {
	if _, err := d.svc.S3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		if errReq, ok := err.(awserr.RequestFailure); ok && errReq.StatusCode() == http.StatusNotFound {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (d *Dispatcher) generatePresignedUrl(ctx context.Context, event iwtypes.Event) (interface{}, error) {
	payload := iwtypes.GeneratePresignedUrlPayload{}
	if err := decodeData(event, &payload); err != nil {
		return nil, err
	}

	bucket, err := d.conf.ResolveBucket(payload.BucketName)
	if err != nil {
		return nil, err
	}

	if payload.Key == "" {
		return nil, errors.New("generate_presigned_url: key missing")
	}

	expires, err := presignExpiry(payload.ExpiresIn)
	if err != nil {
		return nil, err
	}

	url, err := d.svc.Presigner.PresignGetObject(bucket, payload.Key, expires)
	if err != nil {
		return nil, err
	}

	return &iwtypes.PresignedUrl{Url: url}, nil
}

func presignExpiry(seconds int64) (time.Duration, error) {
	if seconds == 0 {
		return defaultPresignExpiry, nil
	}

	maxSeconds := int64(maxPresignExpiry / time.Second)
	if seconds < 0 || seconds > maxSeconds {
		return 0, errors.Errorf("generate_presigned_url: expires_in must be within 1..%d seconds, got %d", maxSeconds, seconds)
	}

	return time.Duration(seconds) * time.Second, nil
}
