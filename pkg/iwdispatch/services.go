package iwdispatch

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs/cloudwatchlogsiface"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/ecs/ecsiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
	"github.com/function61/gokit/ezhttp"
	"github.com/infraweave-io/lambda-api/pkg/iwconfig"
)

// nil credentials => the process's own identity
type LogsClientFactory func(creds *credentials.Credentials) cloudwatchlogsiface.CloudWatchLogsAPI

type UrlFetcher func(ctx context.Context, url string) (io.ReadCloser, error)

type Presigner interface {
	PresignGetObject(bucket string, key string, expires time.Duration) (string, error)
}

// Services are the (read-only after construction) clients the handlers talk to
type Services struct {
	DynamoDB  dynamodbiface.DynamoDBAPI
	S3        s3iface.S3API
	Uploader  s3manageriface.UploaderAPI
	Presigner Presigner
	ECS       ecsiface.ECSAPI
	STS       stsiface.STSAPI
	SNS       snsiface.SNSAPI
	Logs      LogsClientFactory
	FetchUrl  UrlFetcher
}

func NewServices(conf *iwconfig.Config) (*Services, error) {
	awsSession, err := session.NewSession(aws.NewConfig().WithRegion(conf.Region))
	if err != nil {
		return nil, err
	}

	s3Svc := s3.New(awsSession)

	ambientLogs := cloudwatchlogs.New(awsSession)

	return &Services{
		DynamoDB: dynamodb.New(awsSession),
		S3:       s3Svc,
		Uploader: s3manager.NewUploaderWithClient(s3Svc),
		Presigner: &s3Presigner{
			// regional endpoint, otherwise links for fresh buckets redirect (and break the signature)
			svc: s3.New(awsSession, aws.NewConfig().WithEndpoint("https://s3."+conf.Region+".amazonaws.com")),
		},
		ECS: ecs.New(awsSession),
		STS: sts.New(awsSession),
		SNS: sns.New(awsSession),
		Logs: func(creds *credentials.Credentials) cloudwatchlogsiface.CloudWatchLogsAPI {
			if creds == nil {
				return ambientLogs
			}

			return cloudwatchlogs.New(awsSession, aws.NewConfig().WithCredentials(creds))
		},
		FetchUrl: fetchUrl,
	}, nil
}

type s3Presigner struct {
	svc *s3.S3
}

// v1 SDK always signs with SigV4, which SSE-KMS objects require
func (s *s3Presigner) PresignGetObject(bucket string, key string, expires time.Duration) (string, error) {
	req, _ := s.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})

	return req.Presign(expires)
}

func fetchUrl(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := ezhttp.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}
