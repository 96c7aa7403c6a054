package anonymize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validate re-serializes v and re-runs the same regex detectors plus the
// business-suffix scan (spec §4.5). It is intentionally independent of
// Anonymizer: a record can be validated without access to the
// tokenization secret or the reverse-mapping store.
func Validate(v Value) (bool, []string) {
	serialized := serializeForScan(v)

	var issues []string
	for _, d := range regexDetectors {
		if d.re.MatchString(serialized) {
			issues = append(issues, fmt.Sprintf("residual_%s_detected", strings.ToLower(d.kind)))
		}
	}
	if _, ok := detectCompanyName(serialized); ok {
		issues = append(issues, "residual_company_name_detected")
	}

	return len(issues) == 0, issues
}

// serializeForScan renders v to its string form the same way the
// anonymized payload would be persisted, so the validator sees exactly
// what a downstream consumer would read.
func serializeForScan(v Value) string {
	raw, err := json.Marshal(v.ToAny())
	if err != nil {
		return v.Str
	}
	return string(raw)
}
