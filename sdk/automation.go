package dkai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dineshkumar-ai/dkai-go/pkg/gemini"
)

// AutomationService covers scheduled-task tooling: task history logs and
// schedule confirmations.
type AutomationService struct {
	client *Client
}

// TaskLog is one entry in the automation task history.
type TaskLog struct {
	ID          int    `json:"id"`
	TaskName    string `json:"taskName"`
	Timestamp   string `json:"timestamp"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// Schedule describes a recurring automation task.
type Schedule struct {
	TaskName    string
	Frequency   string
	Time        string
	Source      string
	Destination string
}

// TaskLogs generates a realistic recent task history. The model answers
// in raw JSON; fenced output is tolerated and parsed after stripping.
func (s *AutomationService) TaskLogs(ctx context.Context) ([]TaskLog, error) {
	prompt := `You are the 'Task History & Logs' module for DINESHKUMAR.AI.
    Generate a realistic list of 10 recent automation task logs.
    Provide the output as a JSON array. Each object in the array should have the following properties:
    - id: A unique number.
    - taskName: A descriptive name, e.g., "Convert Monthly Sales PDF to Excel".
    - timestamp: A recent ISO 8601 timestamp string.
    - status: Either "Success" or "Failure". Make most of them "Success".
    - description: A brief, one-sentence summary of the task.

    Example format:
    [
      { "id": 1, "taskName": "Extract Q3 Invoice Data", "timestamp": "...", "status": "Success", "description": "Successfully extracted 150 records from 'invoices_q3.pdf'." }
    ]

    ONLY output the raw JSON array. Do not include any other text, explanations, or markdown formatting.`

	resp, err := s.client.provider.GenerateContent(ctx, ModelFlash, gemini.TextRequest(prompt))
	if err != nil {
		return nil, err
	}
	raw := StripCodeFence(resp.Text())
	var logs []TaskLog
	if err := json.Unmarshal([]byte(raw), &logs); err != nil {
		return nil, gemini.NewAPIError("task log response is not a JSON array: " + err.Error())
	}
	return logs, nil
}

// ScheduleConfirmation writes a short, friendly confirmation message for
// a newly scheduled task.
func (s *AutomationService) ScheduleConfirmation(ctx context.Context, sched Schedule) (string, error) {
	if sched.TaskName == "" {
		return "", gemini.NewInvalidRequest("task name must not be empty")
	}
	prompt := fmt.Sprintf(`An AI assistant needs to confirm a scheduled task for a user. Based on the following details, write a short, friendly confirmation message.
    - Task Name: %s
    - Frequency: %s
    - Time: %s
    - Source: %s
    - Destination: %s

    Example response: "Got it! The '%s' task is now scheduled to run %s at %s, processing files from %s to %s."`,
		sched.TaskName, sched.Frequency, sched.Time, sched.Source, sched.Destination,
		sched.TaskName, sched.Frequency, sched.Time, sched.Source, sched.Destination)

	resp, err := s.client.provider.GenerateContent(ctx, ModelFlash, gemini.TextRequest(prompt))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
