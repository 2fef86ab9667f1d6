package errors

// ResponseBody is the error half of the API envelope
type ResponseBody struct {
	Message string                 `json:"message"`
	Code    Code                   `json:"code"`
	Fields  map[string][]string    `json:"fields,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// ToResponse converts any error into an HTTP status and envelope body.
// Internal errors never leak their cause; only the top-level message is used.
func ToResponse(err error) (int, *ResponseBody) {
	if err == nil {
		return CodeOK.HTTPStatus(), nil
	}

	code := GetCode(err)
	body := &ResponseBody{
		Message: GetMessage(err),
		Code:    code,
	}

	var customErr *Error
	if !As(err, &customErr) {
		body.Message = "internal error"
		return code.HTTPStatus(), body
	}

	meta := make(map[string]interface{}, len(customErr.Meta))
	for k, v := range customErr.Meta {
		if k == validationMetaKey {
			if fields, ok := v.(map[string][]string); ok {
				body.Fields = fields
			}
			continue
		}
		meta[k] = v
	}
	if len(meta) > 0 {
		body.Meta = meta
	}

	return code.HTTPStatus(), body
}
