package reader

import (
	"bytes"
	"fmt"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
	jsonx "github.com/ajitpratap0/jsonpipe/pkg/json"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
)

// Strategy names how an object body was split into documents
type Strategy string

const (
	// StrategyWhole parsed the body as one JSON object
	StrategyWhole Strategy = "whole"
	// StrategyArray parsed the body as one JSON array of objects
	StrategyArray Strategy = "array"
	// StrategyLines parsed each newline-separated line as its own object
	StrategyLines Strategy = "lines"
)

// Parse splits body into documents. It first decodes the body as a single
// JSON value; if that fails it decodes every non-blank line on its own. A
// body that fails both is a parse error carrying the failing line.
func Parse(body []byte) ([]models.RawDocument, Strategy, error) {
	if docs, strategy, err := parseWhole(body); err == nil {
		return docs, strategy, nil
	} else if !isTopLevelFailure(err) {
		return nil, strategy, err
	}

	docs, err := parseLines(body)
	if err != nil {
		return nil, StrategyLines, err
	}
	return docs, StrategyLines, nil
}

// topLevelError marks a body that is not a single JSON value at all, which
// is the case the line strategy exists to recover.
type topLevelError struct{ cause error }

func (e *topLevelError) Error() string { return e.cause.Error() }
func (e *topLevelError) Unwrap() error { return e.cause }

func isTopLevelFailure(err error) bool {
	_, ok := err.(*topLevelError)
	return ok
}

func parseWhole(body []byte) ([]models.RawDocument, Strategy, error) {
	v, err := jsonx.DecodeOne(body)
	if err != nil {
		return nil, StrategyWhole, &topLevelError{cause: err}
	}

	switch t := v.(type) {
	case map[string]interface{}:
		return []models.RawDocument{t}, StrategyWhole, nil
	case []interface{}:
		docs := make([]models.RawDocument, 0, len(t))
		for i, elem := range t {
			doc, ok := elem.(map[string]interface{})
			if !ok {
				return nil, StrategyArray, errors.Newf(errors.ErrorTypeParse,
					"array element %d is a %s, not an object", i, kindOf(elem)).
					WithDetail("index", i)
			}
			docs = append(docs, doc)
		}
		return docs, StrategyArray, nil
	default:
		return nil, StrategyWhole, errors.Newf(errors.ErrorTypeParse,
			"top-level JSON value is a %s, not an object", kindOf(v))
	}
}

func parseLines(body []byte) ([]models.RawDocument, error) {
	lines := bytes.Split(body, []byte{'\n'})
	docs := make([]models.RawDocument, 0, len(lines))

	for i, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		v, err := jsonx.DecodeOne(line)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeParse, fmt.Sprintf("line %d is not valid JSON", i+1)).
				WithDetail("line", i+1)
		}
		doc, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeParse, "line %d is a %s, not an object", i+1, kindOf(v)).
				WithDetail("line", i+1)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64, float64:
		return "number"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
