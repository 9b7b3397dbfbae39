package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"MusicFlow/model"
)

// decodeObjects splits a JSON array, or a single object, into raw records.
func decodeObjects(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, model.NewValidationError("", "import file is empty")
	}
	if trimmed[0] == '{' {
		return []json.RawMessage{trimmed}, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, model.NewValidationError("", "import file is not a JSON array or object")
	}
	return records, nil
}

// flattenObject turns one JSON object into the same kind of row decodeCSV
// produces, so both formats are coerced by the same code. Arrays are joined
// with ";". It returns nil when raw is not an object.
func flattenObject(raw json.RawMessage) map[string]string {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil
	}
	row := make(map[string]string, len(obj))
	for k, v := range obj {
		row[strings.ToLower(strings.TrimSpace(k))] = scalarString(v)
	}
	return row
}

func scalarString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []interface{}:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			if s := scalarString(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ";")
	default:
		return ""
	}
}

// decodeCSV reads a header row and returns one map per data row keyed by
// the lower-cased column name.
func decodeCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, model.NewValidationError("", "import file is empty")
	}
	if err != nil {
		return nil, model.NewValidationError("", fmt.Sprintf("invalid CSV header: %v", err))
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.Trim(h, `"`)))
	}
	// a UTF-8 BOM survives into the first column name
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []map[string]string
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, model.NewValidationError("", fmt.Sprintf("invalid CSV row: %v", err))
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(fields) {
				row[h] = strings.TrimSpace(strings.Trim(fields[i], `"`))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func trackFromRow(row map[string]string) model.Track {
	year, _ := strconv.Atoi(row["year"])
	return model.Track{
		ID:       row["id"],
		Title:    row["title"],
		Artist:   row["artist"],
		Album:    row["album"],
		Genre:    row["genre"],
		Year:     year,
		Duration: row["duration"],
		Bitrate:  row["bitrate"],
		Liked:    parseBool(row["liked"]),
	}
}

func playlistFromRow(row map[string]string) model.Playlist {
	trackCount, _ := strconv.Atoi(row["trackcount"])
	p := model.Playlist{
		ID:          row["id"],
		Name:        row["name"],
		Description: row["description"],
		TrackCount:  trackCount,
		Duration:    row["duration"],
		Created:     row["created"],
		IsPublic:    parseBool(row["ispublic"]),
	}
	if ids := row["trackids"]; ids != "" {
		for _, id := range strings.FieldsFunc(ids, func(r rune) bool { return r == ';' || r == '|' }) {
			if id = strings.TrimSpace(id); id != "" {
				p.TrackIDs = append(p.TrackIDs, id)
			}
		}
	}
	return p
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
