// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/url"
	"strconv"
	"time"
)

// Roles reported by the server.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// ClassFilter narrows a query to a class. A nil Level means every level; an
// empty Letter means every letter.
type ClassFilter struct {
	Level  *int
	Letter string
}

// Class is a convenience constructor for a filter on one class.
func Class(level int, letter string) ClassFilter {
	return ClassFilter{Level: &level, Letter: letter}
}

// Values encodes the filter as level and level_letter query parameters.
func (f ClassFilter) Values() url.Values {
	v := url.Values{}
	if f.Level != nil {
		v.Set("level", strconv.Itoa(*f.Level))
	}
	if f.Letter != "" {
		v.Set("level_letter", f.Letter)
	}
	return v
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Level        *int      `json:"level"`
	LevelLetter  string    `json:"level_letter"`
	ClassDisplay string    `json:"class_display"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsTeacher reports whether u has the teacher role.
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }

// FullName mirrors the server's display rule.
func (u User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// RegisterRequest is the body of POST /users/register.
type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Level           int    `json:"level"`
	LevelLetter     string `json:"level_letter"`
}

type RegisterResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Achievement struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earned_at"`
}

type LeaderboardEntry struct {
	UserID            int64   `json:"user_id"`
	Username          string  `json:"username"`
	FullName          string  `json:"full_name"`
	ClassDisplay      string  `json:"class_display"`
	TotalPoints       int     `json:"total_points"`
	CompletedLessons  int     `json:"completed_lessons"`
	AveragePercentage float64 `json:"average_percentage"`
	Rank              int     `json:"rank"`
}

type ClassInfo struct {
	Level         int    `json:"level"`
	LevelLetter   string `json:"level_letter"`
	TotalStudents int    `json:"total_students"`
}

type OverallStats struct {
	TotalPoints       int     `json:"total_points"`
	CompletedLessons  int     `json:"completed_lessons"`
	AveragePercentage float64 `json:"average_percentage"`
}

type LessonStats struct {
	LessonID          int64   `json:"lesson_id"`
	LessonTitle       string  `json:"lesson_title"`
	LessonOrder       int     `json:"lesson_order"`
	TotalStudents     int     `json:"total_students"`
	CompletedCount    int     `json:"completed_count"`
	CompletionRate    float64 `json:"completion_rate"`
	AveragePercentage float64 `json:"average_percentage"`
	TotalAttempts     int     `json:"total_attempts"`
}

// ClassAnalytics is the teacher's per-class summary.
type ClassAnalytics struct {
	ClassInfo    ClassInfo     `json:"class_info"`
	OverallStats OverallStats  `json:"overall_stats"`
	LessonsStats []LessonStats `json:"lessons_stats"`
}

type Period struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Days      int       `json:"days"`
}

type ActivityStat struct {
	Level        *int   `json:"level"`
	LevelLetter  string `json:"level_letter"`
	ClassDisplay string `json:"class_display"`
	Count        int    `json:"count"`
	Date         string `json:"date"`
}

type ClassActivity struct {
	Period Period         `json:"period"`
	Stats  []ActivityStat `json:"stats"`
}

// Export is a downloaded statistics file.
type Export struct {
	Filename    string
	Suggested   string // Content-Disposition filename, if the server sent one
	ContentType string
	Data        []byte
}

type Student struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	ClassDisplay string `json:"class_display"`
	Level        *int   `json:"level"`
	LevelLetter  string `json:"level_letter"`
}

type LessonDetail struct {
	LessonID       int64      `json:"lesson_id"`
	LessonTitle    string     `json:"lesson_title"`
	LessonOrder    int        `json:"lesson_order"`
	BestPercentage float64    `json:"best_percentage"`
	BestScore      int        `json:"best_score"`
	Attempts       int        `json:"attempts"`
	IsCompleted    bool       `json:"is_completed"`
	LastAttempt    *time.Time `json:"last_attempt"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// UserStats is returned for /users/stats/me and /users/stats/{id}.
type UserStats struct {
	TotalPoints       int            `json:"total_points"`
	CompletedLessons  int            `json:"completed_lessons"`
	AveragePercentage float64        `json:"average_percentage"`
	TotalAttempts     int            `json:"total_attempts"`
	LessonsDetail     []LessonDetail `json:"lessons_detail"`
}

type PasswordReset struct {
	Message     string `json:"message"`
	Username    string `json:"username"`
	NewPassword string `json:"new_password"`
}

// ProfileUpdate carries only the fields being changed.
type ProfileUpdate struct {
	Email       *string `json:"email,omitempty"`
	Level       *int    `json:"level,omitempty"`
	LevelLetter *string `json:"level_letter,omitempty"`
}

type LessonProgressSummary struct {
	BestPercentage float64 `json:"best_percentage"`
	IsCompleted    bool    `json:"is_completed"`
	AttemptsCount  int     `json:"attempts_count"`
}

type Lesson struct {
	ID             int64                  `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Order          int                    `json:"order"`
	IsActive       bool                   `json:"is_active"`
	QuestionsCount int                    `json:"questions_count,omitempty"`
	Progress       *LessonProgressSummary `json:"progress,omitempty"`
	Questions      []Question             `json:"questions,omitempty"`
	IsAccessible   *bool                  `json:"is_accessible,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

type Question struct {
	ID            int64          `json:"id"`
	Text          string         `json:"text"`
	Order         int            `json:"order"`
	AnswerOptions []AnswerOption `json:"answer_options"`
}

type AnswerOption struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Order     int    `json:"order"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

// TestSubmission maps question IDs to the chosen answer option IDs.
type TestSubmission struct {
	LessonID int64            `json:"lesson_id"`
	Answers  map[string]int64 `json:"answers"`
}

type TestAttempt struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	LessonID       int64     `json:"lesson_id"`
	Score          int       `json:"score"`
	Percentage     float64   `json:"percentage"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	IsPassed       bool      `json:"is_passed"`
	CreatedAt      time.Time `json:"created_at"`
}

type LessonProgress struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	LessonID       int64      `json:"lesson_id"`
	BestScore      int        `json:"best_score"`
	BestPercentage float64    `json:"best_percentage"`
	AttemptsCount  int        `json:"attempts_count"`
	IsCompleted    bool       `json:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at"`
	LastAttemptAt  time.Time  `json:"last_attempt_at"`
}

// Game types known to the server.
const (
	GameGrammarDetective = "grammar-detective"
	GameSentenceBuilder  = "sentence-builder"
	GameMemoryCards      = "memory-cards"
	GameFillGapRace      = "fill-gap-race"
	GameQuizShow         = "quiz-show"
)

// GameNames are display names keyed by game type.
var GameNames = map[string]string{
	GameGrammarDetective: "Grammar Detective",
	GameSentenceBuilder:  "Sentence Builder",
	GameMemoryCards:      "Memory Cards",
	GameFillGapRace:      "Fill Gap Race",
	GameQuizShow:         "Quiz Show",
}

type GameUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type GameResult struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	GameType     string    `json:"game_type"`
	Level        int       `json:"level"`
	Score        int       `json:"score"`
	MaxScore     int       `json:"max_score"`
	Percentage   float64   `json:"percentage"`
	TimeSpent    int       `json:"time_spent"`
	CorrectCount int       `json:"correct_count"`
	TotalCount   int       `json:"total_count"`
	CreatedAt    time.Time `json:"created_at"`
	User         *GameUser `json:"user,omitempty"`
}

type GameResultRequest struct {
	GameType     string `json:"game_type"`
	Level        int    `json:"level"`
	Score        int    `json:"score"`
	MaxScore     int    `json:"max_score"`
	TimeSpent    int    `json:"time_spent"`
	CorrectCount int    `json:"correct_count"`
	TotalCount   int    `json:"total_count"`
}

type GameStats struct {
	GameType       string     `json:"game_type"`
	Level          int        `json:"level"`
	TotalAttempts  int        `json:"total_attempts"`
	BestScore      int        `json:"best_score"`
	BestPercentage float64    `json:"best_percentage"`
	AvgScore       float64    `json:"avg_score"`
	AvgPercentage  float64    `json:"avg_percentage"`
	AvgTime        float64    `json:"avg_time"`
	LastPlayed     *time.Time `json:"last_played"`
}

type GameSummary struct {
	TotalGames      int            `json:"total_games"`
	TotalTime       int            `json:"total_time"`
	AvgPercentage   float64        `json:"avg_percentage"`
	GamesPlayed     map[string]int `json:"games_played"`
	LevelsCompleted int            `json:"levels_completed"`
}

type ClassGameStats struct {
	StudentID     int64      `json:"student_id"`
	StudentName   string     `json:"student_name"`
	TotalGames    int        `json:"total_games"`
	AvgPercentage float64    `json:"avg_percentage"`
	TotalTime     int        `json:"total_time"`
	BestScore     int        `json:"best_score,omitempty"`
	FavoriteGame  string     `json:"favorite_game"`
	LastActivity  *time.Time `json:"last_activity"`
}

type StudentGameStats struct {
	Stats   []GameStats `json:"stats"`
	Summary GameSummary `json:"summary"`
}
