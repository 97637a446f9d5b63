package iwdispatch

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/infraweave-io/lambda-api/pkg/ddbcodec"
	"github.com/infraweave-io/lambda-api/pkg/iwtypes"
	"github.com/pkg/errors"
)

func (d *Dispatcher) insertDb(ctx context.Context, event iwtypes.Event) (interface{}, error) {
	logicalTable, itemJson, err := insertDbArgs(event)
	if err != nil {
		return nil, err
	}

	table, err := d.conf.ResolveTable(logicalTable)
	if err != nil {
		return nil, err
	}

	item, err := ddbcodec.ItemFromJson(itemJson)
	if err != nil {
		return nil, err
	}

	out, err := d.svc.DynamoDB.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// {"table": "events", "data": <item>} or {"data": {"table": "events", "data": <item>}}
func insertDbArgs(event iwtypes.Event) (string, json.RawMessage, error) {
	if event.Table != "" {
		return event.Table, event.Data, nil
	}

	payload := iwtypes.InsertDbPayload{}
	if err := decodeData(event, &payload); err != nil {
		return "", nil, err
	}

	return payload.Table, payload.Data, nil
}

func (d *Dispatcher) transactWrite(ctx context.Context, event iwtypes.Event) (interface{}, error) {
	itemsJson := event.Items
	if len(itemsJson) == 0 {
		payload := iwtypes.TransactWritePayload{}
		if err := decodeData(event, &payload); err != nil {
			return nil, err
		}

		itemsJson = payload.Items
	}

	items := []iwtypes.TransactItem{}
	if err := json.Unmarshal(itemsJson, &items); err != nil {
		return nil, errors.Wrap(err, "transact_write: items")
	}

	transactItems, err := d.transactItems(items)
	if err != nil {
		return nil, err
	}

	out, err := d.svc.DynamoDB.TransactWriteItemsWithContext(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (d *Dispatcher) transactItems(items []iwtypes.TransactItem) ([]*dynamodb.TransactWriteItem, error) {
	transactItems := []*dynamodb.TransactWriteItem{}

	for idx, item := range items {
		switch {
		case item.Put != nil && item.Delete != nil:
			return nil, errors.Errorf("transact_write: items[%d]: both Put and Delete", idx)
		case item.Put != nil:
			table, err := d.conf.ResolveTable(item.Put.TableName)
			if err != nil {
				return nil, err
			}

			putItem, err := ddbcodec.ItemFromJson(item.Put.Item)
			if err != nil {
				return nil, errors.Wrapf(err, "transact_write: items[%d]", idx)
			}

			transactItems = append(transactItems, &dynamodb.TransactWriteItem{
				Put: &dynamodb.Put{
					TableName: aws.String(table),
					Item:      putItem,
				},
			})
		case item.Delete != nil:
			table, err := d.conf.ResolveTable(item.Delete.TableName)
			if err != nil {
				return nil, err
			}

			key, err := ddbcodec.ItemFromJson(item.Delete.Key)
			if err != nil {
				return nil, errors.Wrapf(err, "transact_write: items[%d]", idx)
			}

			transactItems = append(transactItems, &dynamodb.TransactWriteItem{
				Delete: &dynamodb.Delete{
					TableName: aws.String(table),
					Key:       key,
				},
			})
		default:
			return nil, errors.Errorf("transact_write: items[%d]: neither Put nor Delete", idx)
		}
	}

	return transactItems, nil
}

func (d *Dispatcher) readDb(ctx context.Context, event iwtypes.Event) (interface{}, error) {
	payload := iwtypes.ReadDbPayload{}
	if err := decodeData(event, &payload); err != nil {
		return nil, err
	}

	d.logl.Debug.Printf("data: %s", event.Data)

	logicalTable := event.Table
	if logicalTable == "" {
		logicalTable = payload.Table
	}

	table, err := d.conf.ResolveTable(logicalTable)
	if err != nil {
		return nil, err
	}

	query := payload.Query

	values, err := ddbcodec.OptionalItemFromJson(query.ExpressionAttributeValues)
	if err != nil {
		return nil, errors.Wrap(err, "read_db: ExpressionAttributeValues")
	}

	startKey, err := ddbcodec.OptionalItemFromJson(query.ExclusiveStartKey)
	if err != nil {
		return nil, errors.Wrap(err, "read_db: ExclusiveStartKey")
	}

	out, err := d.svc.DynamoDB.QueryWithContext(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    query.KeyConditionExpression,
		FilterExpression:          query.FilterExpression,
		ProjectionExpression:      query.ProjectionExpression,
		ExpressionAttributeNames:  query.ExpressionAttributeNames,
		ExpressionAttributeValues: values,
		ExclusiveStartKey:         startKey,
		IndexName:                 query.IndexName,
		Limit:                     query.Limit,
		ScanIndexForward:          query.ScanIndexForward,
		ConsistentRead:            query.ConsistentRead,
		Select:                    query.Select,
	})
	if err != nil {
		return nil, err
	}

	items, err := ddbcodec.ItemsToPlain(out.Items)
	if err != nil {
		return nil, err
	}

	lastEvaluatedKey, err := ddbcodec.ItemToPlain(out.LastEvaluatedKey)
	if err != nil {
		return nil, err
	}

	return &iwtypes.QueryResult{
		Items:            items,
		Count:            aws.Int64Value(out.Count),
		ScannedCount:     aws.Int64Value(out.ScannedCount),
		LastEvaluatedKey: lastEvaluatedKey,
	}, nil
}
