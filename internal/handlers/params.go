package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
)

// readBody reads exactly ContentLength bytes, or up to limit+1 bytes when
// the length is unknown.
func readBody(req *Request, limit int64) ([]byte, error) {
	if req.ContentLength == 0 {
		return nil, nil
	}
	if req.ContentLength > limit {
		return nil, &TransportError{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large"}
	}

	body := req.Body
	if body == nil {
		body = http.NoBody
	}

	if req.ContentLength > 0 {
		buf := make([]byte, req.ContentLength)
		if _, err := io.ReadFull(body, buf); err != nil {
			return nil, &TransportError{Status: http.StatusBadRequest, Message: "Unexpected end of request body", Err: err}
		}
		return buf, nil
	}

	buf, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, &TransportError{Status: http.StatusBadRequest, Message: "Unreadable request body", Err: err}
	}
	if int64(len(buf)) > limit {
		return nil, &TransportError{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large"}
	}
	return buf, nil
}

// decodeParams merges query parameters with the decoded body. Body values
// win over query values of the same name.
func decodeParams(contentType, query string, body []byte) (map[string]string, error) {
	params := make(map[string]string)

	if query != "" {
		values, err := url.ParseQuery(query)
		if err != nil {
			return nil, &TransportError{Status: http.StatusBadRequest, Message: "Malformed query string", Err: err}
		}
		mergeFirst(params, values)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return params, nil
	}

	mediaType := "application/x-www-form-urlencoded"
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return nil, &TransportError{Status: http.StatusUnsupportedMediaType, Message: "Unsupported content type", Err: err}
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/x-www-form-urlencoded", "text/plain":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, &TransportError{Status: http.StatusBadRequest, Message: "Malformed form body", Err: err}
		}
		mergeFirst(params, values)
	case "application/json":
		fields, err := decodeFlatJSON(body)
		if err != nil {
			return nil, err
		}
		for k, v := range fields {
			params[k] = v
		}
	default:
		return nil, &TransportError{Status: http.StatusUnsupportedMediaType, Message: "Unsupported content type " + mediaType}
	}

	return params, nil
}

func mergeFirst(dst map[string]string, values url.Values) {
	for k, v := range values {
		if len(v) > 0 {
			dst[k] = v[0]
		}
	}
}

// decodeFlatJSON accepts an object whose values are strings, numbers,
// booleans or null. Numbers keep their literal text.
func decodeFlatJSON(body []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &TransportError{Status: http.StatusBadRequest, Message: "Malformed JSON body", Err: err}
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			fields[k] = val
		case json.Number:
			fields[k] = val.String()
		case bool:
			fields[k] = strconv.FormatBool(val)
		default:
			return nil, &TransportError{Status: http.StatusBadRequest, Message: fmt.Sprintf("JSON field %q must not be nested", k)}
		}
	}
	return fields, nil
}
