package stage

import (
	"fmt"
	"strconv"

	"github.com/ajitpratap0/jsonpipe/pkg/json"
	"github.com/ajitpratap0/jsonpipe/pkg/models"
	"github.com/ajitpratap0/jsonpipe/pkg/strings"
)

// EncodeCSV renders ds as comma separated text with a header row
func EncodeCSV(ds *models.Dataset) ([]byte, error) {
	rows := ds.NumRows()
	cb := strings.NewCSVBuilder(nil, rows+1, len(ds.Columns))
	cb.WriteHeader(ds.Columns)

	fields := make([]string, len(ds.Columns))
	for i := 0; i < rows; i++ {
		for j, c := range ds.Columns {
			f, err := FormatValue(ds.Data[c][i])
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, c, err)
			}
			fields[j] = f
		}
		cb.WriteRow(fields)
	}
	return cb.Bytes(), nil
}

// FormatValue renders one cell. Nil is the empty field, floats use the
// shortest representation that round-trips, sequences are JSON.
func FormatValue(v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int:
		return strconv.Itoa(x), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case []interface{}, map[string]interface{}:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(x), nil
	}
}
