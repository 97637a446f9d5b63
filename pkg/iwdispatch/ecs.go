package iwdispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/infraweave-io/lambda-api/pkg/iwtypes"
	"github.com/pkg/errors"
)

const (
	runnerContainerName = "runner"
	runnerPayloadEnv    = "PAYLOAD"
)

func (d *Dispatcher) startRunner(ctx context.Context, event iwtypes.Event) (interface{}, error) {
	payloadJson, err := compactJson(event.Data)
	if err != nil {
		return nil, errors.Wrap(err, "start_runner: data")
	}

	out, err := d.svc.ECS.RunTaskWithContext(ctx, &ecs.RunTaskInput{
		Cluster:        aws.String(d.conf.EcsClusterName),
		TaskDefinition: aws.String(d.conf.EcsTaskDefinition),
		LaunchType:     aws.String(ecs.LaunchTypeFargate),
		Count:          aws.Int64(1),
		Overrides: &ecs.TaskOverride{
			ContainerOverrides: []*ecs.ContainerOverride{
				{
					Name: aws.String(runnerContainerName),
					Environment: []*ecs.KeyValuePair{
						{
							Name:  aws.String(runnerPayloadEnv),
							Value: aws.String(payloadJson),
						},
					},
				},
			},
		},
		NetworkConfiguration: &ecs.NetworkConfiguration{
			AwsvpcConfiguration: &ecs.AwsVpcConfiguration{
				Subnets:        aws.StringSlice([]string{d.conf.SubnetId}),
				SecurityGroups: aws.StringSlice([]string{d.conf.SecurityGroupId}),
				AssignPublicIp: aws.String(ecs.AssignPublicIpEnabled),
			},
		},
	})
	if err != nil {
		return nil, err
	}

	if len(out.Tasks) == 0 {
		reasons := []string{}
		for _, failure := range out.Failures {
			reasons = append(reasons, aws.StringValue(failure.Arn)+": "+aws.StringValue(failure.Reason))
		}

		return nil, errors.Errorf("start_runner: no task started: %s", strings.Join(reasons, ", "))
	}

	taskArn := aws.StringValue(out.Tasks[0].TaskArn)

	d.logl.Info.Printf("started task %s", taskArn)

	return &iwtypes.RunnerStarted{JobId: jobIdFromTaskArn(taskArn)}, nil
}

// arn:aws:ecs:eu-central-1:123456789012:task/infraweave-cluster/<job id>
func jobIdFromTaskArn(taskArn string) string {
	return taskArn[strings.LastIndex(taskArn, "/")+1:]
}

// absent data serializes as null, like for any other JSON value
func compactJson(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "null", nil
	}

	buf := &bytes.Buffer{}
	if err := json.Compact(buf, raw); err != nil {
		return "", err
	}

	return buf.String(), nil
}
