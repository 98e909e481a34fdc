package model

import "time"

type Survey struct {
	ID          int        `json:"id,omitempty"`
	Version     int        `json:"version,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsAnonymous bool       `json:"is_anonymous"`
	IsActive    bool       `json:"is_active"`
	ShareToken  string     `json:"share_token,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Questions   []Question `json:"questions,omitempty"`
}

type Response struct {
	ID        int       `json:"id"`
	SurveyID  int       `json:"survey_id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	Answers   []Answer  `json:"answers"`
}

// Answer refers to its question by position in the survey's list.
// Text is used by free text questions, Options (indexes into the
// question's options) by choice questions.
type Answer struct {
	Question int    `json:"question"`
	Text     string `json:"text,omitempty"`
	Options  []int  `json:"options,omitempty"`
}

type OptionCount struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

type QuestionStats struct {
	Text      string        `json:"text"`
	Kind      Kind          `json:"qtype"`
	Options   []OptionCount `json:"options,omitempty"`
	TextCount int           `json:"text_count,omitempty"`
}
