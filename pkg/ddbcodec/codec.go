// Converts between plain JSON values and DynamoDB's typed-attribute encoding
package ddbcodec

import (
	"bytes"
	"encoding/json"

	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/pkg/errors"
)

type Item = map[string]*dynamodb.AttributeValue

// "", [] and {} keep their types (S, L, M) instead of turning into NULL
var encoder = dynamodbattribute.NewEncoder(func(e *dynamodbattribute.Encoder) {
	e.NullEmptyString = false
	e.EnableEmptyCollections = true
})

// N comes out as dynamodbattribute.Number so no float64 round trip loses digits
var decoder = dynamodbattribute.NewDecoder(func(d *dynamodbattribute.Decoder) {
	d.UseNumber = true
	d.EnableEmptyCollections = true
})

// ItemFromJson converts a JSON object to an item. Numbers keep their exact decimal text
// (we never go through float64 on the way in).
func ItemFromJson(raw json.RawMessage) (Item, error) {
	if len(raw) == 0 {
		return nil, errors.New("item: empty")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	plain := map[string]interface{}{}
	if err := dec.Decode(&plain); err != nil {
		return nil, errors.Wrap(err, "item")
	}
	if plain == nil { // was JSON null
		return nil, errors.New("item: expected object, got null")
	}

	av, err := encoder.Encode(numbersAsDynamoNumbers(plain))
	if err != nil {
		return nil, err
	}

	return av.M, nil
}

// OptionalItemFromJson is ItemFromJson for optional values (absent => nil, nil)
func OptionalItemFromJson(raw json.RawMessage) (Item, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	return ItemFromJson(raw)
}

func ItemToPlain(item Item) (map[string]interface{}, error) {
	if item == nil {
		return nil, nil
	}

	var plain interface{}
	if err := decoder.Decode(&dynamodb.AttributeValue{M: item}, &plain); err != nil {
		return nil, err
	}

	asMap, ok := dynamoNumbersAsJsonNumbers(plain).(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("item: expected map, got %T", plain)
	}

	return asMap, nil
}

func ItemsToPlain(items []Item) ([]map[string]interface{}, error) {
	plain := []map[string]interface{}{}

	for _, item := range items {
		itemPlain, err := ItemToPlain(item)
		if err != nil {
			return nil, err
		}

		plain = append(plain, itemPlain)
	}

	return plain, nil
}

// json.Number would otherwise be encoded as a string attribute
func numbersAsDynamoNumbers(val interface{}) interface{} {
	switch v := val.(type) {
	case json.Number:
		return dynamodbattribute.Number(v.String())
	case map[string]interface{}:
		for key, nested := range v {
			v[key] = numbersAsDynamoNumbers(nested)
		}
		return v
	case []interface{}:
		for i, nested := range v {
			v[i] = numbersAsDynamoNumbers(nested)
		}
		return v
	default:
		return v
	}
}

// dynamodbattribute.Number would otherwise be encoded as a JSON string
func dynamoNumbersAsJsonNumbers(val interface{}) interface{} {
	switch v := val.(type) {
	case dynamodbattribute.Number:
		return json.Number(v)
	case map[string]interface{}:
		for key, nested := range v {
			v[key] = dynamoNumbersAsJsonNumbers(nested)
		}
		return v
	case []interface{}:
		for i, nested := range v {
			v[i] = dynamoNumbersAsJsonNumbers(nested)
		}
		return v
	default:
		return v
	}
}
