package curriculum

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const bankSchema = `{
  "type": "object",
  "properties": {
    "quiz_id": {"type": "string"},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question", "options", "answer"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "options": {"type": "array", "items": {"type": "string"}, "minItems": 2},
          "answer": {"type": "string", "minLength": 1},
          "level": {"type": "integer", "minimum": 0},
          "reviewed": {"type": "boolean"}
        }
      }
    },
    "cases": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["level", "details"],
        "properties": {
          "level": {"type": "integer", "minimum": 1},
          "details": {"type": "string"}
        }
      }
    }
  }
}`

var bankSchemaLoader = gojsonschema.NewStringLoader(bankSchema)

// ValidateBankJSON checks a JSON document against the bank schema.
func ValidateBankJSON(data []byte) error {
	result, err := gojsonschema.Validate(bankSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validating bank: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid bank: %s", strings.Join(msgs, "; "))
}

// ParseBankJSON validates and decodes a JSON bank.
func ParseBankJSON(data []byte) (RawBank, error) {
	if err := ValidateBankJSON(data); err != nil {
		return RawBank{}, err
	}
	var rb RawBank
	if err := json.Unmarshal(data, &rb); err != nil {
		return RawBank{}, fmt.Errorf("decoding bank: %w", err)
	}
	return rb, nil
}

func loadJSONBank(path string) (*RawBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	rb, err := ParseBankJSON(data)
	if err != nil {
		slog.Warn("skipping invalid bank JSON", "path", path, "error", err)
		return nil, nil
	}
	return &rb, nil
}
