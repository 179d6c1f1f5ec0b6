// Package jsonpipe moves JSON documents from an object store bucket into a
// columnar warehouse table.
//
// A run lists every object under a bucket prefix, parses each one as JSON
// (a single document, an array of documents, or one document per line),
// flattens nested objects into snake_cased columns and builds a table from
// the union of all columns. The table is split into N CSV chunks which are
// written to a staging folder, then the warehouse is told to create the
// target table if it does not exist and bulk copy the staged folder into it.
//
// # Quick Start
//
// The jsonpipe command runs the whole load from a YAML file, flags or
// JSONPIPE_* environment variables:
//
//	jsonpipe run --config jsonpipe.yaml
//	jsonpipe ddl --bucket events --table clicks --nodes 4
//
// The building blocks are importable on their own. Rendering the table DDL
// for a set of documents:
//
//	import (
//	    "github.com/ajitpratap0/jsonpipe/pkg/models"
//	    "github.com/ajitpratap0/jsonpipe/pkg/schema"
//	    "github.com/ajitpratap0/jsonpipe/pkg/tabular"
//	)
//
//	ds := tabular.FromDocuments([]models.RawDocument{
//	    {"userId": int64(7), "event": map[string]interface{}{"name": "click"}},
//	})
//	ddl, err := schema.InferDDL(ds, "clicks", schema.DefaultOptions())
//
// # Key Packages
//
//	cmd/jsonpipe       - CLI over the run orchestrator in internal/pipeline
//	pkg/reader         - Fetches objects and parses them as JSON documents
//	pkg/flatten        - Nested document to flat record conversion
//	pkg/tabular        - Column union and dataset construction
//	pkg/schema         - Column type inference and CREATE TABLE rendering
//	pkg/stage          - Partitioning, CSV encoding and chunk upload
//	pkg/warehouse      - Redshift and Snowflake connections and COPY statements
//	pkg/objectstore    - S3, GCS and in-memory object stores
//	pkg/config         - YAML configuration with environment substitution
//	pkg/errors         - Structured error handling
//	pkg/logger         - Structured logging
//	pkg/metrics        - Prometheus metrics
//
// # Failure Semantics
//
// Any failure aborts the run. Schema problems are detected before any chunk
// is uploaded. Chunks already uploaded by a failed run are left in place,
// and the warehouse connection is closed on every exit path.
package jsonpipe
