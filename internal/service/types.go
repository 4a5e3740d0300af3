package service

import (
	"encoding/json"

	"github.com/abhisek/levo/internal/session"
	"github.com/abhisek/levo/internal/streak"
)

// AuthResponse is returned by every login endpoint.
type AuthResponse struct {
	User            session.User             `json:"user"`
	Tokens          session.Tokens           `json:"tokens"`
	LanguageProfile *session.LanguageProfile `json:"languageProfile,omitempty"`
}

// RefreshResponse is the payload of /auth/refresh.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// OnboardingRequest completes first-run setup.
type OnboardingRequest struct {
	TargetLanguage      string `json:"targetLanguage"`
	Level               string `json:"level"`
	DailyGoalMinutes    int    `json:"dailyGoalMinutes"`
	NotificationEnabled bool   `json:"notificationEnabled"`
	NotificationHour    int    `json:"notificationHour"`
}

// Me is the /users/me payload.
type Me struct {
	User            session.User             `json:"user"`
	LanguageProfile *session.LanguageProfile `json:"languageProfile"`
}

// ProfileUpdate carries the editable user fields.
type ProfileUpdate struct {
	Name         *string `json:"name,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

// SettingsUpdate carries the editable settings; nil fields are unchanged.
type SettingsUpdate struct {
	DailyGoalMinutes    *int  `json:"dailyGoalMinutes,omitempty"`
	NotificationEnabled *bool `json:"notificationEnabled,omitempty"`
	NotificationHour    *int  `json:"notificationHour,omitempty"`
	SoundEnabled        *bool `json:"soundEnabled,omitempty"`
	EffectsEnabled      *bool `json:"effectsEnabled,omitempty"`
}

// LanguageChange is the /users/me/language payload.
type LanguageChange struct {
	ActiveLanguage  string                  `json:"activeLanguage"`
	LanguageProfile session.LanguageProfile `json:"languageProfile"`
	IsNew           bool                    `json:"isNew"`
}

// HomeData is the /home payload.
type HomeData struct {
	Greeting string `json:"greeting"`
	Hearts   struct {
		Current         int     `json:"current"`
		Max             int     `json:"max"`
		TimeUntilRefill *string `json:"timeUntilRefill"`
	} `json:"hearts"`
	TodayLesson struct {
		Progress     int    `json:"progress"`
		Completed    int    `json:"completed"`
		Total        int    `json:"total"`
		NextLessonID string `json:"nextLessonId,omitempty"`
	} `json:"todayLesson"`
	Streak struct {
		Current      int          `json:"current"`
		IsInDanger   bool         `json:"isInDanger"`
		WeeklyRecord []streak.Day `json:"weeklyRecord"`
	} `json:"streak"`
	Categories []Category `json:"categories"`
	State      string     `json:"state"` // normal, low-hearts, streak-danger
}

// Category is a learning area with its completion percentage.
type Category struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Progress int    `json:"progress"`
}

// Lesson statuses.
const (
	LessonCompleted = "completed"
	LessonCurrent   = "current"
	LessonLocked    = "locked"
)

// Lesson is one node of the lesson map.
type Lesson struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// LessonUnit groups lessons.
type LessonUnit struct {
	UnitNumber int      `json:"unitNumber"`
	UnitTitle  string   `json:"unitTitle"`
	Lessons    []Lesson `json:"lessons"`
}

// LessonMap is the /lessons payload.
type LessonMap struct {
	Units []LessonUnit `json:"units"`
}

// Question is a multiple-choice question. CorrectIndex is nil when the
// server keeps the answer key to itself.
type Question struct {
	ID           string   `json:"_id,omitempty"`
	Category     string   `json:"category,omitempty"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correctIndex,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
}

// AnswerKey returns the locally known correct option.
func (q Question) AnswerKey() (int, bool) {
	if q.CorrectIndex == nil || *q.CorrectIndex < 0 || *q.CorrectIndex >= len(q.Options) {
		return 0, false
	}
	return *q.CorrectIndex, true
}

// LessonDetail is a lesson with its quiz.
type LessonDetail struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

// LessonResult is sent when a lesson is finished.
type LessonResult struct {
	Score            int `json:"score"`
	CorrectCount     int `json:"correctCount"`
	TotalQuestions   int `json:"totalQuestions"`
	TimeSpentSeconds int `json:"timeSpentSeconds"`
}

// LessonReward is the server's response to a finished lesson.
type LessonReward struct {
	XPEarned           int               `json:"xpEarned"`
	CoinsEarned        int               `json:"coinsEarned"`
	StreakUpdated      bool              `json:"streakUpdated"`
	CurrentStreak      int               `json:"currentStreak"`
	NewBadges          []json.RawMessage `json:"newBadges"`
	NextLessonUnlocked bool              `json:"nextLessonUnlocked"`
}

// Word statuses.
const (
	WordCompleted = "completed"
	WordLearning  = "learning"
	WordNew       = "new"
	WordWrong     = "wrong"
)

// Word is a vocabulary entry.
type Word struct {
	ID            string `json:"_id"`
	Word          string `json:"word"`
	Pronunciation string `json:"pronunciation"`
	Meaning       string `json:"meaning"`
	PartOfSpeech  string `json:"partOfSpeech"`
	Level         string `json:"level"`
	Chapter       int    `json:"chapter"`
	Status        string `json:"status"`
	CorrectCount  int    `json:"correctCount"`
	WrongCount    int    `json:"wrongCount"`
}

// WordQuery filters the vocabulary list. Zero values are omitted.
type WordQuery struct {
	Status  string
	Chapter int
	Page    int
	Limit   int
}

// VocabularyList is the /vocabulary payload.
type VocabularyList struct {
	Words []Word `json:"words"`
	Tabs  struct {
		All       int `json:"all"`
		Learning  int `json:"learning"`
		Completed int `json:"completed"`
		Wrong     int `json:"wrong"`
	} `json:"tabs"`
}

// FlashcardWord is a flashcard.
type FlashcardWord struct {
	ID                 string `json:"_id"`
	Word               string `json:"word"`
	Pronunciation      string `json:"pronunciation"`
	Meaning            string `json:"meaning"`
	PartOfSpeech       string `json:"partOfSpeech"`
	ExampleSentence    string `json:"exampleSentence"`
	ExampleTranslation string `json:"exampleTranslation"`
	AudioURL           string `json:"audioUrl,omitempty"`
}

// FlashcardDeck is the /vocabulary/flashcards payload.
type FlashcardDeck struct {
	Cards []FlashcardWord `json:"cards"`
	Total int             `json:"total"`
}

// FlashcardResult is the server's response to a flashcard answer.
type FlashcardResult struct {
	WordID       string `json:"wordId"`
	Status       string `json:"status"`
	CorrectCount int    `json:"correctCount"`
	WrongCount   int    `json:"wrongCount"`
	XPEarned     int    `json:"xpEarned"`
}

// GrammarTopic is an entry of the grammar list.
type GrammarTopic struct {
	ID       string `json:"_id"`
	Icon     string `json:"icon"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Level    string `json:"level"`
	Progress int    `json:"progress"`
	Status   string `json:"status"`
	Locked   bool   `json:"locked"`
}

// GrammarExample is an example sentence of a grammar topic.
type GrammarExample struct {
	Sentence    string `json:"sentence"`
	Translation string `json:"translation"`
}

// GrammarDetail is the explanation of a grammar topic.
type GrammarDetail struct {
	ID          string           `json:"_id"`
	Title       string           `json:"title"`
	Explanation string           `json:"explanation"`
	Examples    []GrammarExample `json:"examples"`
}

// ReadingSummary is an entry of the reading list.
type ReadingSummary struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Level     string `json:"level"`
	Completed bool   `json:"completed"`
	Locked    bool   `json:"locked"`
}

// ReadingPassage is a passage with its comprehension questions.
type ReadingPassage struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	Translation string     `json:"translation,omitempty"`
	Questions   []Question `json:"questions"`
}

// ListeningProblem is a listening question. Answers are submitted as the
// text of the chosen option.
type ListeningProblem struct {
	ID       string   `json:"_id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	AudioURL string   `json:"audioUrl,omitempty"`
}

// AnswerResult is the graded outcome of an indexed answer. Pointer
// fields are absent from some endpoints.
type AnswerResult struct {
	Correct         bool   `json:"correct"`
	CorrectAnswer   int    `json:"correctAnswer"`
	Explanation     string `json:"explanation,omitempty"`
	HeartsRemaining *int   `json:"heartsRemaining,omitempty"`
	XPEarned        int    `json:"xpEarned"`
}

// TextAnswerResult is the graded outcome of a free-text answer.
type TextAnswerResult struct {
	Correct         bool   `json:"correct"`
	CorrectAnswer   string `json:"correctAnswer"`
	HeartsRemaining *int   `json:"heartsRemaining,omitempty"`
	XPEarned        int    `json:"xpEarned"`
}

// ConversationSituation is an entry of the conversation list.
type ConversationSituation struct {
	ID        string `json:"_id"`
	Emoji     string `json:"emoji"`
	Title     string `json:"title"`
	Level     string `json:"level"`
	Completed bool   `json:"completed"`
	Locked    bool   `json:"locked"`
}

// DialogLine is one line of a conversation. IsUser marks the learner's
// part.
type DialogLine struct {
	Speaker     string `json:"speaker"`
	Text        string `json:"text"`
	Translation string `json:"translation,omitempty"`
	IsUser      bool   `json:"isUser"`
}

// ConversationDetail is a situation with its dialog.
type ConversationDetail struct {
	ID     string       `json:"_id"`
	Emoji  string       `json:"emoji"`
	Title  string       `json:"title"`
	Scene  string       `json:"scene,omitempty"`
	Dialog []DialogLine `json:"dialog"`
}

// PracticeResult is the server's response to a practiced dialog line.
type PracticeResult struct {
	Score     int  `json:"score"`
	XPEarned  int  `json:"xpEarned"`
	Completed bool `json:"completed"`
}

// QuizAnswer is a daily-quiz answer.
type QuizAnswer struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer int    `json:"selectedAnswer"`
}

// QuizResult is sent when a quiz is finished.
type QuizResult struct {
	Score          int `json:"score"`
	CorrectCount   int `json:"correctCount"`
	TotalQuestions int `json:"totalQuestions"`
}

// DailyQuiz is the /quiz/daily payload.
type DailyQuiz struct {
	Questions []Question `json:"questions"`
}

// Review priorities.
const (
	PriorityUrgent      = "urgent"
	PriorityRecommended = "recommended"
	PriorityNormal      = "normal"
)

// ReviewCategory is one row of the review dashboard.
type ReviewCategory struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Emoji      string `json:"emoji"`
	Count      int    `json:"count"`
	LastReview string `json:"lastReview"`
	NextReview string `json:"nextReview"`
	Priority   string `json:"priority"`
	Accuracy   int    `json:"accuracy"`
}

// ReviewDashboard is the /review payload.
type ReviewDashboard struct {
	TotalReviewItems int              `json:"totalReviewItems"`
	Categories       []ReviewCategory `json:"categories"`
}

// Stats periods.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

// StatsReport is the /stats payload. The backend shape varies by period, so
// only the common totals are typed.
type StatsReport struct {
	TotalXP          int `json:"totalXp"`
	TotalMinutes     int `json:"totalMinutes"`
	LessonsCompleted int `json:"lessonsCompleted"`
	WordsLearned     int `json:"wordsLearned"`
	Accuracy         int `json:"accuracy"`
	CurrentStreak    int `json:"currentStreak"`
}

// Badge is an achievement.
type Badge struct {
	ID         string `json:"_id"`
	Emoji      string `json:"emoji"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Achieved   bool   `json:"achieved"`
	AchievedAt string `json:"achievedAt,omitempty"`
	Condition  string `json:"condition,omitempty"`
}

// BadgeList is the /badges payload.
type BadgeList struct {
	AchievedCount int     `json:"achievedCount"`
	TotalCount    int     `json:"totalCount"`
	Badges        []Badge `json:"badges"`
}

// Refill methods.
const (
	RefillAd         = "ad"
	RefillCoinSingle = "coin_single"
	RefillCoinFull   = "coin_full"
)

// Earn reasons.
const (
	EarnAdWatch      = "ad_watch"
	EarnDailyCheck   = "daily_check"
	EarnFriendInvite = "friend_invite"
)

// CoinBalance is returned by the coin endpoints. Backends report the
// balance as either "balance" or "coins".
type CoinBalance struct {
	Balance *int `json:"balance,omitempty"`
	Coins   *int `json:"coins,omitempty"`
	Earned  int  `json:"earned,omitempty"`
	Spent   int  `json:"spent,omitempty"`
}

// Value returns the reported balance and whether one was present.
func (b CoinBalance) Value() (int, bool) {
	switch {
	case b.Balance != nil:
		return *b.Balance, true
	case b.Coins != nil:
		return *b.Coins, true
	}
	return 0, false
}

// SubscriptionInfo is the /subscription payload.
type SubscriptionInfo struct {
	Plan      string `json:"plan"`
	Status    string `json:"status"`
	IsPremium bool   `json:"isPremium"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}
