package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// reportJobSchema validates the shape of a report job message before it is
// decoded. semester_id is optional and may be explicit null.
const reportJobSchema = `{
	"type": "object",
	"properties": {
		"student_id":    {"type": "integer"},
		"semester_id":   {"type": ["integer", "null"]},
		"s3_output_key": {"type": "string", "minLength": 1}
	},
	"required": ["student_id", "s3_output_key"]
}`

var reportJobLoader = gojsonschema.NewStringLoader(reportJobSchema)

// ValidateReportJob checks a raw message body against the job schema and
// returns a single error listing every violation.
func ValidateReportJob(body []byte) error {
	documentLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(reportJobLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return fmt.Errorf("payload validation failed: %s", strings.Join(messages, "; "))
	}

	return nil
}
