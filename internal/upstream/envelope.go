package upstream

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rogerio-castellano/catalog-console/internal/models"
)

// ErrShapeMismatch is returned when a list response does not follow the
// {"body": {"data": [...]}} envelope.
var ErrShapeMismatch = errors.New("upstream response does not match the product list envelope")

type listEnvelope struct {
	Body *struct {
		Data *[]models.Product `json:"data"`
	} `json:"body"`
}

// DecodeList extracts the product list from a raw upstream list response.
func DecodeList(data []byte) ([]models.Product, error) {
	var env listEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if env.Body == nil {
		return nil, fmt.Errorf("%w: missing body", ErrShapeMismatch)
	}
	if env.Body.Data == nil {
		return nil, fmt.Errorf("%w: missing body.data", ErrShapeMismatch)
	}
	return *env.Body.Data, nil
}

// ErrorMessage does a best-effort extraction of the "error" field of an
// error response body. It returns "" when the body has no such field.
func ErrorMessage(body []byte) string {
	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch v := payload.Error.(type) {
	case string:
		return v
	case nil:
		return payload.Message
	default:
		return fmt.Sprint(v)
	}
}
