package dkai

import (
	"context"
	"fmt"

	"github.com/dineshkumar-ai/dkai-go/pkg/gemini"
)

// DocumentsService converts office documents between formats by asking
// the model to synthesize plausible structured content for the named
// file. No file bytes are uploaded; the file name drives the synthesis.
type DocumentsService struct {
	client *Client
}

// ExtractCSVFromPDF simulates PDF data extraction for the named file and
// returns clean CSV starting with the header row. Markdown fences the
// model wraps around the data are stripped.
func (s *DocumentsService) ExtractCSVFromPDF(ctx context.Context, fileName string) (string, error) {
	if fileName == "" {
		return "", gemini.NewInvalidRequest("file name must not be empty")
	}
	prompt := fmt.Sprintf(`You are the 'PDF to Excel AI' module for DINESHKUMAR.AI. A user has uploaded a file named '%s'.
    Your task is to simulate data extraction. Generate a plausible dataset in CSV format that could be extracted from such a file.
    The data should be clean, well-structured, and ready for use in Excel.
    For example, if the file is 'sales_report_Q3.pdf', generate a sales report with columns like 'Date', 'Product', 'UnitsSold', 'Price', 'Total'.
    ONLY output the raw CSV data. Do not include any explanation, titles, or markdown formatting. Start directly with the CSV header row.`, fileName)

	resp, err := s.client.provider.GenerateContent(ctx, ModelFlash, gemini.TextRequest(prompt))
	if err != nil {
		return "", err
	}
	return StripCodeFence(resp.Text()), nil
}

// SummarizeCSV produces an executive summary of extracted CSV data in
// Markdown.
func (s *DocumentsService) SummarizeCSV(ctx context.Context, csvData, fileName string) (string, error) {
	if csvData == "" {
		return "", gemini.NewInvalidRequest("csv data must not be empty")
	}
	prompt := fmt.Sprintf(`You are the 'Report Generator AI' module for DINESHKUMAR.AI.
A user has extracted the following data in CSV format from a file named '%s'.

CSV Data:
`+"```csv\n%s\n```"+`

Your task is to analyze this data and provide a concise executive summary.
- Highlight key trends, patterns, or significant figures.
- Point out any potential anomalies or interesting insights.
- Keep the summary professional and easy to understand for a business audience.
- Format your response using Markdown for clear presentation (e.g., headings, bullet points).
`, fileName, csvData)

	resp, err := s.client.provider.GenerateContent(ctx, ModelFlash, gemini.TextRequest(prompt))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// ReportFromExcel generates a professional Markdown report for the named
// spreadsheet: title, executive summary, and a detailed data table.
func (s *DocumentsService) ReportFromExcel(ctx context.Context, fileName string) (string, error) {
	if fileName == "" {
		return "", gemini.NewInvalidRequest("file name must not be empty")
	}
	prompt := fmt.Sprintf(`You are the 'Excel to PDF AI' module for DINESHKUMAR.AI. A user has uploaded an Excel file named '%s'.
Your task is to generate a professional report in Markdown format based on the likely contents of this file.
For example, if the file is 'quarterly_earnings.xlsx', create a financial report. If it's 'project_timeline.xlsx', create a project status report.
The report must include:
1.  A clear, relevant title.
2.  An "Executive Summary" section with 2-3 paragraphs of insightful analysis.
3.  A "Detailed Data" section.
4.  A Markdown table containing plausible data with at least 5 rows and 4 columns.
The entire output must be a single Markdown document. Do not include any other text or explanations.`, fileName)

	resp, err := s.client.provider.GenerateContent(ctx, ModelFlash, gemini.TextRequest(prompt))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
