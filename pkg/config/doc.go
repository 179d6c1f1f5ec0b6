// Package config loads the pipeline configuration.
//
// A configuration file is YAML. Any ${VAR_NAME} in the file is replaced by
// the environment variable of that name before parsing, and
// ${VAR_NAME:-default} falls back to default when the variable is unset:
//
//	source:
//	  bucket: clicks-raw
//	staging:
//	  folder: staging
//	  nodes: 4
//	  compression: gzip
//	warehouse:
//	  dialect: redshift
//	  dsn: ${REDSHIFT_DSN}
//	  table: clicks_impressions
//	  credentials: aws_iam_role=${LOAD_ROLE_ARN}
//	logging:
//	  level: ${LOG_LEVEL:-info}
//	timeout: 30m
//
// LoadFile parses the file, applies defaults for every omitted field and
// validates the result. The CLI layers flags and JSONPIPE_* environment
// variables on top of the file through viper.
package config
