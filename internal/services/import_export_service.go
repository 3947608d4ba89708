package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
	"github.com/error-404/learning-service/internal/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

// ImportExportService handles bulk question import from CSV/XLSX files and
// question pool exports.
type ImportExportService interface {
	ImportQuestionsFromFile(ctx context.Context, file multipart.File, filename string, creatorID string) (*models.ImportSummary, error)
	ImportQuestionsFromCSV(ctx context.Context, reader io.Reader, creatorID string) (*models.ImportSummary, error)
	ImportQuestionsFromExcel(ctx context.Context, reader io.Reader, creatorID string) (*models.ImportSummary, error)

	ExportQuestionsToCSV(ctx context.Context, req *models.ExportRequest) ([]byte, error)
	ExportQuestionsToExcel(ctx context.Context, req *models.ExportRequest) ([]byte, error)
}

var importColumns = []string{"lesson_id", "question_text", "option_a", "option_b", "correct_answer", "difficulty"}

type importExportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
}

func NewImportExportService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== IMPORT OPERATIONS =====

func (s *importExportService) ImportQuestionsFromFile(ctx context.Context, file multipart.File, filename string, creatorID string) (*models.ImportSummary, error) {
	s.logger.Info("Starting file import", "filename", filename, "creator_id", creatorID)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return s.ImportQuestionsFromCSV(ctx, file, creatorID)
	case ".xlsx", ".xls":
		return s.ImportQuestionsFromExcel(ctx, file, creatorID)
	default:
		return nil, NewValidationError("file", "unsupported file format", ext)
	}
}

func (s *importExportService) ImportQuestionsFromCSV(ctx context.Context, reader io.Reader, creatorID string) (*models.ImportSummary, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, NewValidationError("file", "CSV must have header row and at least one data row", len(records))
	}

	return s.importRows(ctx, records, creatorID)
}

func (s *importExportService) ImportQuestionsFromExcel(ctx context.Context, reader io.Reader, creatorID string) (*models.ImportSummary, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "Excel must have header row and at least one data row", len(rows))
	}

	return s.importRows(ctx, rows, creatorID)
}

func (s *importExportService) importRows(ctx context.Context, rows [][]string, creatorID string) (*models.ImportSummary, error) {
	start := time.Now()

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range importColumns {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	summary := &models.ImportSummary{TotalRows: len(rows) - 1}
	var questions []*models.Question

	for rowIndex, row := range rows[1:] {
		question, rowErrors := s.parseRow(ctx, row, headerMap, rowIndex+2, creatorID)
		if len(rowErrors) > 0 {
			summary.Errors = append(summary.Errors, rowErrors...)
			summary.ErrorCount++
		} else if question != nil {
			questions = append(questions, question)
			summary.SuccessCount++
		}
		summary.ProcessedRows++
	}

	if len(questions) > 0 {
		if err := s.repo.Question().CreateBatch(ctx, questions); err != nil {
			return nil, fmt.Errorf("failed to save questions: %w", err)
		}
		for _, q := range questions {
			summary.CreatedQuestions = append(summary.CreatedQuestions, q.ID)
		}
	}

	summary.ProcessingTime = time.Since(start)

	s.logger.Info("Question import completed",
		"total_rows", summary.TotalRows,
		"success_count", summary.SuccessCount,
		"error_count", summary.ErrorCount)
	return summary, nil
}

func (s *importExportService) parseRow(ctx context.Context, row []string, headerMap map[string]int, rowNum int, creatorID string) (*models.Question, []models.ImportValidationError) {
	var rowErrors []models.ImportValidationError

	getField := func(name string) string {
		idx, ok := headerMap[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	addError := func(field, message, value string) {
		rowErrors = append(rowErrors, models.ImportValidationError{
			Row:     rowNum,
			Field:   field,
			Message: message,
			Value:   value,
		})
	}

	lessonRaw := getField("lesson_id")
	lessonID, err := strconv.ParseUint(lessonRaw, 10, 32)
	if err != nil || lessonID == 0 {
		addError("lesson_id", "must be a positive integer", lessonRaw)
	} else if _, err := s.repo.Content().GetLesson(ctx, uint(lessonID)); err != nil {
		addError("lesson_id", "lesson does not exist", lessonRaw)
	}

	text := getField("question_text")
	if len(text) < 10 {
		addError("question_text", "must be at least 10 characters", text)
	}

	options := make(map[string]string)
	for _, key := range []string{"A", "B", "C", "D"} {
		if value := getField("option_" + strings.ToLower(key)); value != "" {
			options[key] = value
		}
	}
	if len(options) < 2 {
		addError("options", "at least two options are required", "")
	}

	correct := strings.ToUpper(getField("correct_answer"))
	if _, ok := options[correct]; !ok {
		addError("correct_answer", "must match one of the provided options", correct)
	}

	difficulty := models.DifficultyLevel(strings.ToLower(getField("difficulty")))
	if !models.ValidDifficulty(difficulty) {
		addError("difficulty", "must be easy, medium or hard", string(difficulty))
	}

	if len(rowErrors) > 0 {
		return nil, rowErrors
	}

	optionsJSON, err := json.Marshal(options)
	if err != nil {
		addError("options", "failed to encode options", "")
		return nil, rowErrors
	}

	return &models.Question{
		LessonID:     uint(lessonID),
		Text:         text,
		Options:      datatypes.JSON(optionsJSON),
		Correct:      correct,
		Difficulty:   difficulty,
		Topic:        getField("topic"),
		QualityScore: qualityScore(text, options),
		CreatedBy:    creatorID,
	}, nil
}

// qualityScore is a cheap import-time heuristic flagging questions that are
// likely to need editorial attention.
func qualityScore(text string, options map[string]string) float64 {
	score := 1.0

	if len(text) < 30 {
		score -= 0.2
	}
	if len(options) < 4 {
		score -= 0.1
	}

	seen := make(map[string]bool)
	for _, v := range options {
		norm := strings.ToLower(strings.TrimSpace(v))
		if seen[norm] {
			score -= 0.3
			break
		}
		seen[norm] = true
	}

	if score < 0.1 {
		score = 0.1
	}
	return score
}

// ===== EXPORT OPERATIONS =====

var exportHeaders = []string{
	"Question ID", "Lesson ID", "Question Text", "Option A", "Option B",
	"Option C", "Option D", "Correct Answer", "Difficulty", "Topic",
	"Times Asked", "Times Correct", "Avg Time (s)",
}

func (s *importExportService) ExportQuestionsToCSV(ctx context.Context, req *models.ExportRequest) ([]byte, error) {
	questions, err := s.questionsForExport(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, question := range questions {
		row, err := questionExportRow(question, req)
		if err != nil {
			return nil, err
		}
		strRow := make([]string, len(row))
		for i, v := range row {
			strRow[i] = fmt.Sprint(v)
		}
		if err := writer.Write(strRow); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importExportService) ExportQuestionsToExcel(ctx context.Context, req *models.ExportRequest) ([]byte, error) {
	questions, err := s.questionsForExport(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Questions"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, question := range questions {
		row, err := questionExportRow(question, req)
		if err != nil {
			return nil, err
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importExportService) questionsForExport(ctx context.Context, req *models.ExportRequest) ([]*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.ModuleID != nil {
		questions, err := s.repo.Question().GetByModule(ctx, *req.ModuleID)
		if err != nil {
			return nil, fmt.Errorf("failed to load module questions: %w", err)
		}
		return filterByDifficulty(questions, req.Difficulty), nil
	}

	if req.LessonID == nil {
		return nil, NewValidationError("export", "either lesson_id or module_id is required", nil)
	}

	levels := []models.DifficultyLevel{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}
	if req.Difficulty != nil {
		levels = []models.DifficultyLevel{*req.Difficulty}
	}

	var questions []*models.Question
	for _, level := range levels {
		batch, err := s.repo.Question().GetByLessonAndDifficulty(ctx, *req.LessonID, level, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load lesson questions: %w", err)
		}
		questions = append(questions, batch...)
	}
	return questions, nil
}

func filterByDifficulty(questions []*models.Question, difficulty *models.DifficultyLevel) []*models.Question {
	if difficulty == nil {
		return questions
	}
	out := questions[:0]
	for _, q := range questions {
		if q.Difficulty == *difficulty {
			out = append(out, q)
		}
	}
	return out
}

func questionExportRow(question *models.Question, req *models.ExportRequest) ([]interface{}, error) {
	var options map[string]string
	if err := json.Unmarshal(question.Options, &options); err != nil {
		return nil, fmt.Errorf("failed to decode options for question %d: %w", question.ID, err)
	}

	correct := question.Correct
	if !req.IncludeAnswers {
		correct = ""
	}

	row := []interface{}{
		question.ID,
		question.LessonID,
		question.Text,
		options["A"],
		options["B"],
		options["C"],
		options["D"],
		correct,
		string(question.Difficulty),
		question.Topic,
	}

	if req.IncludeStats && question.Stats != nil {
		row = append(row, question.Stats.TimesAsked, question.Stats.TimesCorrect, question.Stats.AvgTime)
	} else {
		row = append(row, "", "", "")
	}
	return row, nil
}
