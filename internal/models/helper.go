package models

import "time"

type ImportValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

type ImportSummary struct {
	TotalRows        int                     `json:"total_rows"`
	ProcessedRows    int                     `json:"processed_rows"`
	SuccessCount     int                     `json:"success_count"`
	ErrorCount       int                     `json:"error_count"`
	CreatedQuestions []uint                  `json:"created_questions"`
	Errors           []ImportValidationError `json:"errors"`
	ProcessingTime   time.Duration           `json:"processing_time"`
}

type ExportRequest struct {
	LessonID       *uint            `json:"lesson_id"`
	ModuleID       *uint            `json:"module_id"`
	Difficulty     *DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	IncludeStats   bool             `json:"include_stats"`
	IncludeAnswers bool             `json:"include_answers"`
}
