package iwdispatch

import (
	"context"
	"io"
	"io/ioutil"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
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
	"github.com/infraweave-io/lambda-api/pkg/iwconfig"
)

// the embedded interfaces are nil, so calling anything we didn't fake panics
type testEnv struct {
	dispatcher *Dispatcher
	db         *fakeDynamoDB
	s3         *fakeS3
	uploader   *fakeUploader
	presigner  *fakePresigner
	ecs        *fakeEcs
	sts        *fakeSts
	sns        *fakeSns
	logs       *fakeLogs
	logsCreds  []*credentials.Credentials // one per client construction
	fetched    []string
	sources    map[string]string
}

func newTestEnv() *testEnv {
	conf := iwconfig.New(iwconfig.Config{
		Region:                 "eu-central-1",
		Environment:            "prod",
		CentralAccountId:       "111111111111",
		CurrentAccountId:       "111111111111",
		NotificationTopicArn:   "arn:aws:sns:eu-central-1:111111111111:infraweave-notifications",
		EventsTableName:        "infraweave-events-prod",
		ModulesTableName:       "infraweave-modules-prod",
		PoliciesTableName:      "infraweave-policies-prod",
		DeploymentsTableName:   "infraweave-deployments-prod",
		ChangeRecordsTableName: "infraweave-change-records-prod",
		ConfigTableName:        "infraweave-config-prod",
		ModulesBucket:          "infraweave-modules-prod",
		PoliciesBucket:         "infraweave-policies-prod",
		ChangeRecordsBucket:    "infraweave-change-records-prod",
		ProvidersBucket:        "infraweave-providers-prod",
		EcsClusterName:         "infraweave-cluster",
		EcsTaskDefinition:      "infraweave-runner",
		SubnetId:               "subnet-0a1b2c",
		SecurityGroupId:        "sg-0d4e5f",
	})

	env := &testEnv{
		db:        &fakeDynamoDB{},
		s3:        &fakeS3{},
		uploader:  &fakeUploader{},
		presigner: &fakePresigner{},
		ecs:       &fakeEcs{},
		sts:       &fakeSts{},
		sns:       &fakeSns{},
		logs:      &fakeLogs{},
		sources:   map[string]string{},
	}

	env.dispatcher = New(conf, &Services{
		DynamoDB:  env.db,
		S3:        env.s3,
		Uploader:  env.uploader,
		Presigner: env.presigner,
		ECS:       env.ecs,
		STS:       env.sts,
		SNS:       env.sns,
		Logs: func(creds *credentials.Credentials) cloudwatchlogsiface.CloudWatchLogsAPI {
			env.logsCreds = append(env.logsCreds, creds)
			return env.logs
		},
		FetchUrl: func(_ context.Context, url string) (io.ReadCloser, error) {
			env.fetched = append(env.fetched, url)
			return ioutil.NopCloser(strings.NewReader(env.sources[url])), nil
		},
	}, nil)

	return env
}

// total amount of calls to remote services
func (e *testEnv) remoteCalls() int {
	return len(e.db.puts) + len(e.db.transacts) + len(e.db.queries) +
		len(e.s3.puts) + len(e.s3.heads) + len(e.uploader.uploads) + len(e.fetched) +
		len(e.ecs.runs) + len(e.sts.assumes) + len(e.sns.publishes) + len(e.logs.reads)
}

type fakeDynamoDB struct {
	dynamodbiface.DynamoDBAPI
	puts        []*dynamodb.PutItemInput
	transacts   []*dynamodb.TransactWriteItemsInput
	queries     []*dynamodb.QueryInput
	queryOutput *dynamodb.QueryOutput
}

func (f *fakeDynamoDB) PutItemWithContext(_ aws.Context, input *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, input)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) TransactWriteItemsWithContext(_ aws.Context, input *dynamodb.TransactWriteItemsInput, _ ...request.Option) (*dynamodb.TransactWriteItemsOutput, error) {
	f.transacts = append(f.transacts, input)
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamoDB) QueryWithContext(_ aws.Context, input *dynamodb.QueryInput, _ ...request.Option) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, input)
	return f.queryOutput, nil
}

type fakeS3 struct {
	s3iface.S3API
	puts    []*s3.PutObjectInput
	putBody []string
	heads   []*s3.HeadObjectInput
	headErr error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	body, err := ioutil.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	f.puts = append(f.puts, input)
	f.putBody = append(f.putBody, string(body))
	return &s3.PutObjectOutput{ETag: aws.String(`"d41d8cd98f00b204e9800998ecf8427e"`)}, nil
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, input *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	f.heads = append(f.heads, input)
	if f.headErr != nil {
		return nil, f.headErr
	}

	return &s3.HeadObjectOutput{}, nil
}

type fakeUploader struct {
	s3manageriface.UploaderAPI
	uploads   []*s3manager.UploadInput
	bodies    []string
	effective []s3manager.Uploader // uploader settings after options applied
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	body, err := ioutil.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	settings := s3manager.Uploader{}
	for _, opt := range opts {
		opt(&settings)
	}

	f.uploads = append(f.uploads, input)
	f.bodies = append(f.bodies, string(body))
	f.effective = append(f.effective, settings)

	return &s3manager.UploadOutput{}, nil
}

type fakePresigner struct {
	expiries []time.Duration
}

func (f *fakePresigner) PresignGetObject(bucket string, key string, expires time.Duration) (string, error) {
	f.expiries = append(f.expiries, expires)
	return "https://" + bucket + ".s3.eu-central-1.amazonaws.com/" + key + "?X-Amz-Expires=" + expires.String(), nil
}

type fakeEcs struct {
	ecsiface.ECSAPI
	runs      []*ecs.RunTaskInput
	runOutput *ecs.RunTaskOutput
}

func (f *fakeEcs) RunTaskWithContext(_ aws.Context, input *ecs.RunTaskInput, _ ...request.Option) (*ecs.RunTaskOutput, error) {
	f.runs = append(f.runs, input)
	return f.runOutput, nil
}

type fakeSts struct {
	stsiface.STSAPI
	assumes []*sts.AssumeRoleInput
}

func (f *fakeSts) AssumeRoleWithContext(_ aws.Context, input *sts.AssumeRoleInput, _ ...request.Option) (*sts.AssumeRoleOutput, error) {
	f.assumes = append(f.assumes, input)
	return &sts.AssumeRoleOutput{
		Credentials: &sts.Credentials{
			AccessKeyId:     aws.String("ASIAEXAMPLE"),
			SecretAccessKey: aws.String("secret"),
			SessionToken:    aws.String("token"),
			Expiration:      aws.Time(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
	}, nil
}

type fakeSns struct {
	snsiface.SNSAPI
	publishes []*sns.PublishInput
}

func (f *fakeSns) PublishWithContext(_ aws.Context, input *sns.PublishInput, _ ...request.Option) (*sns.PublishOutput, error) {
	f.publishes = append(f.publishes, input)
	return &sns.PublishOutput{MessageId: aws.String("95df01b4-ee98-5cb9-9903-4c221d41eb5e")}, nil
}

type fakeLogs struct {
	cloudwatchlogsiface.CloudWatchLogsAPI
	reads []*cloudwatchlogs.GetLogEventsInput
}

func (f *fakeLogs) GetLogEventsWithContext(_ aws.Context, input *cloudwatchlogs.GetLogEventsInput, _ ...request.Option) (*cloudwatchlogs.GetLogEventsOutput, error) {
	f.reads = append(f.reads, input)
	return &cloudwatchlogs.GetLogEventsOutput{
		Events: []*cloudwatchlogs.OutputLogEvent{
			{
				Timestamp:     aws.Int64(1718884923000),
				Message:       aws.String("terraform init"),
				IngestionTime: aws.Int64(1718884923500),
			},
		},
		NextForwardToken:  aws.String("f/3"),
		NextBackwardToken: aws.String("b/1"),
	}, nil
}
