package iwdispatch

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/infraweave-io/lambda-api/pkg/iwtypes"
	"github.com/pkg/errors"
)

const defaultNotificationSubject = "Unknown Subject"

func (d *Dispatcher) publishNotification(ctx context.Context, event iwtypes.Event) (interface{}, error) {
	payload := iwtypes.PublishNotificationPayload{}
	if len(event.Data) > 0 { // no data is ok, all fields have defaults
		if err := decodeData(event, &payload); err != nil {
			return nil, err
		}
	}

	subject := defaultNotificationSubject
	if payload.Subject != nil {
		subject = *payload.Subject
	}

	message, err := notificationMessage(payload.Message)
	if err != nil {
		return nil, err
	}

	out, err := d.svc.SNS.PublishWithContext(ctx, &sns.PublishInput{
		TopicArn: aws.String(d.conf.NotificationTopicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// strings go out as-is, everything else (objects included) as JSON
func notificationMessage(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) > 0 && trimmed[0] == '"' {
		message := ""
		if err := json.Unmarshal(trimmed, &message); err != nil {
			return "", errors.Wrap(err, "publish_notification: message")
		}

		return message, nil
	}

	message, err := compactJson(trimmed)
	if err != nil {
		return "", errors.Wrap(err, "publish_notification: message")
	}

	return message, nil
}
