package iwdispatch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/function61/gokit/assert"
	"github.com/infraweave-io/lambda-api/pkg/iwtypes"
)

func TestReadLogsCentralAccountUsesAmbientIdentity(t *testing.T) {
	env := newTestEnv()

	result, err := env.dispatcher.Dispatch(context.Background(), iwtypes.Event{
		Event: iwtypes.OpReadLogs,
		Data:  json.RawMessage(`{"job_id": "abc123", "project_id": "111111111111"}`),
	})
	assert.Ok(t, err)

	assert.Assert(t, len(env.sts.assumes) == 0)
	assert.Assert(t, len(env.logsCreds) == 1)
	assert.Assert(t, env.logsCreds[0] == nil)

	assert.Assert(t, len(env.logs.reads) == 1)
	read := env.logs.reads[0]
	assert.EqualString(t, *read.LogGroupName, "/infraweave/eu-central-1/prod/runner")
	assert.EqualString(t, *read.LogStreamName, "ecs/runner/abc123")
	assert.Assert(t, *read.StartFromHead)

	assert.EqualJson(t, result, `{
  "events": [
    {
      "timestamp": 1718884923000,
      "message": "terraform init",
      "ingestionTime": 1718884923500
    }
  ],
  "nextForwardToken": "f/3",
  "nextBackwardToken": "b/1"
}`)
}

func TestReadLogsProjectAccountAssumesRole(t *testing.T) {
	env := newTestEnv()

	_, err := env.dispatcher.Dispatch(context.Background(), iwtypes.Event{
		Event: iwtypes.OpReadLogs,
		Data:  json.RawMessage(`{"job_id": "abc123", "project_id": "222222222222"}`),
	})
	assert.Ok(t, err)

	assert.Assert(t, len(env.sts.assumes) == 1)
	assert.EqualString(t, *env.sts.assumes[0].RoleArn, "arn:aws:iam::222222222222:role/infraweave_api_read_log-eu-central-1-prod")
	assert.EqualString(t, *env.sts.assumes[0].RoleSessionName, "CentralApiAssumeRoleSession")

	assert.Assert(t, len(env.logsCreds) == 1)
	creds, err := env.logsCreds[0].Get()
	assert.Ok(t, err)
	assert.EqualString(t, creds.AccessKeyID, "ASIAEXAMPLE")
	assert.EqualString(t, creds.SecretAccessKey, "secret")
	assert.EqualString(t, creds.SessionToken, "token")

	assert.Assert(t, len(env.logs.reads) == 1)
	assert.EqualString(t, *env.logs.reads[0].LogStreamName, "ecs/runner/abc123")
}
