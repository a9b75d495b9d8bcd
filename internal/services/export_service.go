package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

// ExportService renders results and analytics into downloadable documents.
type ExportService struct {
	repo      repositories.Repository
	analytics *AnalyticsService
	logger    utils.Logger
}

func NewExportService(repo repositories.Repository, analytics *AnalyticsService, logger utils.Logger) *ExportService {
	return &ExportService{
		repo:      repo,
		analytics: analytics,
		logger:    logger,
	}
}

// ResultPDF renders one of the caller's results as a PDF certificate-style
// report. Question text is looked up from the current quiz where it still
// exists; correctness and explanations come from the immutable snapshot.
func (s *ExportService) ResultPDF(ctx context.Context, userID, resultID uint) ([]byte, error) {
	result, err := s.repo.Result().GetByID(ctx, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	if result.UserID != userID {
		return nil, ErrResultNotFound
	}

	answers, err := result.AnswerRecords()
	if err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}

	questionText := map[uint]string{}
	if quiz, err := s.repo.Quiz().GetByID(ctx, result.QuizID); err == nil {
		for _, question := range quiz.Questions {
			questionText[question.ID] = question.Text
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Quiz Result")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Quiz: %s", result.Quiz.Title))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Score: %d / 100 (%d of %d correct)", result.Score, result.CorrectCount(), result.TotalQuestions()))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Time spent: %ds", result.TimeSpent))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Completed: %s", result.CompletedAt.Format("2006-01-02 15:04")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 10, "Answers")
	pdf.Ln(10)

	for i, answer := range answers {
		verdict := "Incorrect"
		if answer.IsCorrect {
			verdict = "Correct"
		}
		text := questionText[answer.QuestionID]
		if text == "" {
			text = fmt.Sprintf("Question %d", answer.QuestionID)
		}

		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", i+1, text), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, fmt.Sprintf("%s. %s", verdict, answer.Explanation), "", "L", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// QuizAnalyticsXLSX builds a spreadsheet with a quiz's aggregate stats,
// score distribution and per-attempt standings.
func (s *ExportService) QuizAnalyticsXLSX(ctx context.Context, quizID uint) ([]byte, error) {
	analytics, err := s.analytics.QuizAnalytics(ctx, quizID)
	if err != nil {
		return nil, err
	}

	rows, _, err := s.repo.Result().QuizLeaderboard(ctx, quizID, repositories.Pagination{Page: 1, Limit: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to load standings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Analytics"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "Quiz")
	f.SetCellValue(sheet, "B1", analytics.Title)
	f.SetCellValue(sheet, "A2", "Attempts")
	f.SetCellValue(sheet, "B2", analytics.AttemptCount)
	f.SetCellValue(sheet, "A3", "Unique users")
	f.SetCellValue(sheet, "B3", analytics.UniqueUsers)
	f.SetCellValue(sheet, "A4", "Average score")
	f.SetCellValue(sheet, "B4", analytics.AverageScore)
	f.SetCellValue(sheet, "A5", "Average time (s)")
	f.SetCellValue(sheet, "B5", analytics.AverageTime)

	f.SetCellValue(sheet, "A7", "Score range")
	f.SetCellValue(sheet, "B7", "Count")
	for i, bucket := range analytics.Distribution {
		row := 8 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), bucket.Range)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), bucket.Count)
	}

	const standings = "Standings"
	if _, err := f.NewSheet(standings); err != nil {
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}
	headers := []string{"Rank", "User", "Score", "Time (s)", "Completed"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(standings, cell, header)
	}
	for i, row := range rows {
		values := []interface{}{i + 1, row.Name, row.Score, row.TimeSpent, row.CompletedAt.Format("2006-01-02 15:04")}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(standings, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}
