package schemas

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"

	"github.com/mitanshu610/chat-threads/internal/platform/apierr"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report json names so messages match what callers send.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate runs struct-tag validation on v and maps failures to a
// validation-coded *apierr.Error.
func Validate(op string, v interface{}) error {
	if err := validatorInstance().Struct(v); err != nil {
		return apierr.MapError(op, err)
	}
	return nil
}

// EncodeJSONMap marshals m for a JSON column. A nil map is stored as {}.
func EncodeJSONMap(m map[string]interface{}) (datatypes.JSON, error) {
	if m == nil {
		return datatypes.JSON([]byte(`{}`)), nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode json map: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func decodeJSONMap(raw datatypes.JSON) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode json map: %w", err)
	}
	return out, nil
}
