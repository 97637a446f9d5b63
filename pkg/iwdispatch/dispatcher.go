// Routes an invocation event to the one AWS call it asks for
package iwdispatch

import (
	"context"
	"encoding/json"
	"log"

	"github.com/function61/gokit/logex"
	"github.com/infraweave-io/lambda-api/pkg/iwconfig"
	"github.com/infraweave-io/lambda-api/pkg/iwtypes"
	"github.com/pkg/errors"
)

type Dispatcher struct {
	conf *iwconfig.Config
	svc  *Services
	logl *logex.Leveled
}

func New(conf *iwconfig.Config, svc *Services, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		conf: conf,
		svc:  svc,
		logl: logex.Levels(logger),
	}
}

// Dispatch returns the result of the operation verbatim. Unknown operations are not
// errors: they get a 400-style result instead.
func (d *Dispatcher) Dispatch(ctx context.Context, event iwtypes.Event) (interface{}, error) {
	if eventJson, err := json.Marshal(event); err == nil {
		d.logl.Info.Printf("event: %s", eventJson)
	}

	switch event.Event {
	case iwtypes.OpInsertDb:
		return d.insertDb(ctx, event)
	case iwtypes.OpTransactWrite:
		return d.transactWrite(ctx, event)
	case iwtypes.OpUploadFileBase64:
		return d.uploadFileBase64(ctx, event)
	case iwtypes.OpUploadFileUrl:
		return d.uploadFileUrl(ctx, event)
	case iwtypes.OpReadDb:
		return d.readDb(ctx, event)
	case iwtypes.OpStartRunner:
		return d.startRunner(ctx, event)
	case iwtypes.OpReadLogs:
		return d.readLogs(ctx, event)
	case iwtypes.OpGeneratePresignedUrl:
		return d.generatePresignedUrl(ctx, event)
	case iwtypes.OpPublishNotification:
		return d.publishNotification(ctx, event)
	default:
		d.logl.Error.Printf("invalid event type: %s", event.Event)

		return iwtypes.NewInvalidOperation(event.Event), nil
	}
}

// Invoke makes Dispatcher a lambda.Handler for direct invocations
func (d *Dispatcher) Invoke(ctx context.Context, reqRaw []byte) ([]byte, error) {
	event := iwtypes.Event{}
	if err := json.Unmarshal(reqRaw, &event); err != nil {
		return nil, errors.Wrap(err, "event unmarshal")
	}

	result, err := d.Dispatch(ctx, event)
	if err != nil {
		return nil, err
	}

	return json.Marshal(result)
}

func decodeData(event iwtypes.Event, payload interface{}) error {
	if len(event.Data) == 0 {
		return errors.Errorf("%s: data missing", event.Event)
	}

	if err := json.Unmarshal(event.Data, payload); err != nil {
		return errors.Wrapf(err, "%s: data", event.Event)
	}

	return nil
}
