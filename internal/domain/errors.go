package domain

import "errors"

var (
	// ErrSessionRunning is returned when a session start is requested while one is active.
	ErrSessionRunning = errors.New("session already running")
	// ErrNotEnoughParticipants is returned when fewer players are connected than the policy minimum.
	ErrNotEnoughParticipants = errors.New("not enough participants")
	// ErrInvalidTimeLimit is returned for a non-positive per-question time limit.
	ErrInvalidTimeLimit = errors.New("time limit must be positive")
	// ErrEmptyNickname is returned when the handshake line is empty; the connection is discarded.
	ErrEmptyNickname = errors.New("empty nickname")
	// ErrBankNotFound indicates the question bank could not be located.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrEmptyBank indicates a bank with no questions; no session can run from it.
	ErrEmptyBank = errors.New("question bank has no questions")
	// ErrMissingPrompt indicates a question record without prompt text.
	ErrMissingPrompt = errors.New("question has no prompt")
	// ErrMissingOption indicates a question record missing one of its four options.
	ErrMissingOption = errors.New("question option missing")
	// ErrBadAnswerLabel indicates a correct-answer label outside A-D.
	ErrBadAnswerLabel = errors.New("correct answer label invalid")
)
