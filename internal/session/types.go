package session

// Tokens is the credential pair issued by the backend at login.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// User is the logged-in account as returned by the backend.
type User struct {
	ID             string       `json:"_id"`
	Email          string       `json:"email"`
	Name           string       `json:"name"`
	ProfileImage   string       `json:"profileImage,omitempty"`
	ActiveLanguage string       `json:"activeLanguage"`
	IsPremium      bool         `json:"isPremium"`
	Coins          int          `json:"coins"`
	Settings       UserSettings `json:"settings"`
	IsNewUser      bool         `json:"isNewUser,omitempty"`
}

// UserSettings are the per-user app preferences.
type UserSettings struct {
	DailyGoalMinutes    int  `json:"dailyGoalMinutes"`
	NotificationEnabled bool `json:"notificationEnabled"`
	NotificationHour    int  `json:"notificationHour"`
	SoundEnabled        bool `json:"soundEnabled"`
	EffectsEnabled      bool `json:"effectsEnabled"`
}

// LanguageProfile is the learner's state for the active target language.
type LanguageProfile struct {
	TargetLanguage       string `json:"targetLanguage"`
	Level                string `json:"level"`
	XP                   int    `json:"xp"`
	UserLevel            int    `json:"userLevel"`
	Hearts               int    `json:"hearts"`
	VocabularyProgress   int    `json:"vocabularyProgress"`
	GrammarProgress      int    `json:"grammarProgress"`
	ConversationProgress int    `json:"conversationProgress"`
	ListeningProgress    int    `json:"listeningProgress"`
	ReadingProgress      int    `json:"readingProgress"`
	QuizProgress         int    `json:"quizProgress"`
}

// State is a point-in-time copy of the session.
type State struct {
	// Loading is true until the first RestoreSession completes.
	Loading bool

	User    *User
	Profile *LanguageProfile
	Tokens  *Tokens
}

// Authenticated reports whether the state carries an access token.
func (s State) Authenticated() bool {
	return s.Tokens != nil && s.Tokens.AccessToken != ""
}

func (s State) clone() State {
	out := State{Loading: s.Loading}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	if s.Tokens != nil {
		t := *s.Tokens
		out.Tokens = &t
	}
	return out
}
