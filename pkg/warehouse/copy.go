package warehouse

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/jsonpipe/pkg/compression"
	"github.com/ajitpratap0/jsonpipe/pkg/errors"
)

// CopySource addresses the staged chunks of one load
type CopySource struct {
	// Scheme of the object store URL (s3, gcs)
	Scheme      string
	Bucket      string
	Folder      string
	Credentials string
	Compression compression.Algorithm
}

// URL returns <scheme>://<bucket>/<folder>/
func (s CopySource) URL() string {
	scheme := s.Scheme
	if scheme == "" {
		scheme = "s3"
	}
	return fmt.Sprintf("%s://%s/%s/", scheme, s.Bucket, strings.Trim(s.Folder, "/"))
}

// CopySQL renders the bulk-copy statement that ingests every object under
// the staging folder as CSV with one header row.
//
// Redshift:
//
//	COPY <table> FROM 's3://<bucket>/<folder>/' CREDENTIALS '<credentials>' CSV IGNOREHEADER 1;
//
// Snowflake detects chunk compression itself, so only Redshift names it.
func CopySQL(dialect Dialect, table string, src CopySource) (string, error) {
	if table == "" {
		return "", errors.New(errors.ErrorTypeValidation, "table name must not be empty")
	}
	if src.Bucket == "" {
		return "", errors.New(errors.ErrorTypeValidation, "copy source bucket must not be empty")
	}

	switch dialect {
	case Redshift, "":
		if src.Scheme != "" && src.Scheme != "s3" {
			return "", errors.Newf(errors.ErrorTypeConfig,
				"redshift can only copy from s3, not %s", src.Scheme)
		}
		return fmt.Sprintf("COPY %s FROM '%s' CREDENTIALS '%s' CSV IGNOREHEADER 1%s;",
			table, src.URL(), src.Credentials, redshiftCompression(src.Compression)), nil

	case Snowflake:
		return fmt.Sprintf("COPY INTO %s FROM '%s' CREDENTIALS = (%s) FILE_FORMAT = (TYPE = CSV SKIP_HEADER = 1);",
			table, src.URL(), src.Credentials), nil

	default:
		return "", errors.Newf(errors.ErrorTypeConfig, "unsupported warehouse dialect: %s", dialect)
	}
}

func redshiftCompression(a compression.Algorithm) string {
	switch a {
	case compression.Gzip:
		return " GZIP"
	case compression.Zstd:
		return " ZSTD"
	default:
		return ""
	}
}
