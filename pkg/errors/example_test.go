// Package errors provides examples of structured error handling in jsonpipe.
package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/jsonpipe/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeParse, "object is not valid JSON").
		WithDetail("key", "events/2024-01-01.json").
		WithDetail("line", 3)

	fmt.Println(err.Error())

	// Output:
	// parse: object is not valid JSON
}

// ExampleWrap shows how an object store failure is wrapped with the key it concerns.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeIO, "failed to fetch object").
		WithDetail("key", "events/a.json")

	if errors.IsType(err, errors.ErrorTypeIO) {
		fmt.Println("This is an io error")
	}
	key, _ := errors.Detail(err, "key")
	fmt.Println(key)
	fmt.Println(err)

	// Output:
	// This is an io error
	// events/a.json
	// io: failed to fetch object: unexpected EOF
}

// ExampleIsType demonstrates that IsType looks at the outermost structured error.
func ExampleIsType() {
	schemaErr := errors.New(errors.ErrorTypeSchema, "column mixes incompatible types")
	wrapped := errors.Wrap(schemaErr, errors.ErrorTypeWarehouse, "load failed")

	fmt.Printf("Is schema error: %v\n", errors.IsType(schemaErr, errors.ErrorTypeSchema))
	fmt.Printf("Wrapped error is warehouse type: %v\n", errors.IsType(wrapped, errors.ErrorTypeWarehouse))
	fmt.Printf("Wrapped error is schema type: %v\n", errors.IsType(wrapped, errors.ErrorTypeSchema))

	// Output:
	// Is schema error: true
	// Wrapped error is warehouse type: true
	// Wrapped error is schema type: false
}

// Example_errorChain shows how contexts chain from the driver up to the pipeline.
func Example_errorChain() {
	err := copyStatement()
	if err != nil {
		err = errors.Wrap(err, errors.ErrorTypeInternal, "pipeline run failed").
			WithDetail("table", "clicks_impressions")
		fmt.Println("Full error chain:", err)
	}

	// Output:
	// Full error chain: internal: pipeline run failed: warehouse: bulk copy failed: S3ServiceException
}

func copyStatement() error {
	return errors.Wrap(fmt.Errorf("S3ServiceException"), errors.ErrorTypeWarehouse, "bulk copy failed")
}
