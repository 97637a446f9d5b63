package iwdispatch

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs/cloudwatchlogsiface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/infraweave-io/lambda-api/pkg/iwconfig"
	"github.com/infraweave-io/lambda-api/pkg/iwtypes"
)

const readLogRoleSessionName = "CentralApiAssumeRoleSession"

func (d *Dispatcher) readLogs(ctx context.Context, event iwtypes.Event) (interface{}, error) {
	payload := iwtypes.ReadLogsPayload{}
	if err := decodeData(event, &payload); err != nil {
		return nil, err
	}

	logsSvc, err := d.logsClientFor(ctx, payload.ProjectId)
	if err != nil {
		return nil, err
	}

	out, err := logsSvc.GetLogEventsWithContext(ctx, &cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(d.conf.RunnerLogGroup()),
		LogStreamName: aws.String(iwconfig.RunnerLogStream(payload.JobId)),
		StartFromHead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}

	logEvents := &iwtypes.LogEvents{
		Events:            []iwtypes.LogEvent{},
		NextForwardToken:  aws.StringValue(out.NextForwardToken),
		NextBackwardToken: aws.StringValue(out.NextBackwardToken),
	}

	for _, ev := range out.Events {
		logEvents.Events = append(logEvents.Events, iwtypes.LogEvent{
			Timestamp:     aws.Int64Value(ev.Timestamp),
			Message:       aws.StringValue(ev.Message),
			IngestionTime: aws.Int64Value(ev.IngestionTime),
		})
	}

	return logEvents, nil
}

// runner logs of the central account are readable with our own identity. for project
// accounts we have to assume the project's log reader role first.
func (d *Dispatcher) logsClientFor(ctx context.Context, projectId string) (cloudwatchlogsiface.CloudWatchLogsAPI, error) {
	if projectId == d.conf.CentralAccountId {
		return d.svc.Logs(nil), nil
	}

	assumed, err := d.svc.STS.AssumeRoleWithContext(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(d.conf.ReadLogRoleArn(projectId)),
		RoleSessionName: aws.String(readLogRoleSessionName),
	})
	if err != nil {
		return nil, err
	}

	return d.svc.Logs(credentials.NewStaticCredentials(
		aws.StringValue(assumed.Credentials.AccessKeyId),
		aws.StringValue(assumed.Credentials.SecretAccessKey),
		aws.StringValue(assumed.Credentials.SessionToken),
	)), nil
}
