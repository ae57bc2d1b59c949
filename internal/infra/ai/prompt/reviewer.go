package prompt

import "fmt"

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior digital media forensics analyst. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Use lowercase verdict values: authentic, edited, generated, inconclusive.
- confidence is an integer 0-100.
- findings is an array of objects; include at least a title, weight, and summary. Keep items concise.
- Base your reasoning ONLY on the forensic report provided in the prompt. Never claim to have seen the pixels.

Schema (example with empty values):
{
  "verdict": "<authentic|edited|generated|inconclusive>",
  "confidence": 0,
  "findings": [
    {
      "title": "<string>",
      "weight": "<high|medium|low>",
      "summary": "<string>"
    }
  ],
  "summary": "<string>"
}`
}

// GetUserPrompt wraps the serialized forensic report.
func GetUserPrompt(reportJSON string) string {
	return fmt.Sprintf("Review this forensic analysis report and respond with the JSON per schema. Report: %s", reportJSON)
}
