package engine

import (
	"context"
	"time"

	"github.com/EryGltkn/CN-termproject/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const defaultMinParticipants = 3

// ResultSink receives a finished session's final scores. Archival is best
// effort and never fails the session.
type ResultSink interface {
	ArchiveFinalScores(ctx context.Context, entries []domain.SnapshotEntry) error
}

// Config carries the round-pacing policy.
type Config struct {
	// MinParticipants is the join threshold for starting a session;
	// defaults to 3 when zero.
	MinParticipants int
	// GracePause is the post-feedback wait before the next question.
	GracePause time.Duration
}

// Engine drives the question/answer/scoring state machine over a Session.
// Rounds run strictly sequentially; exactly one session may run at a time.
type Engine struct {
	session   *Session
	questions []domain.Question
	cfg       Config
	clock     clockwork.Clock
	log       zerolog.Logger
	sink      ResultSink
}

// NewEngine wires a session engine over the given registry and question
// bank. sink may be nil.
func NewEngine(session *Session, bank domain.Bank, cfg Config, clock clockwork.Clock, log zerolog.Logger, sink ResultSink) *Engine {
	if cfg.MinParticipants <= 0 {
		cfg.MinParticipants = defaultMinParticipants
	}
	return &Engine{
		session:   session,
		questions: bank.Questions,
		cfg:       cfg,
		clock:     clock,
		log:       log,
		sink:      sink,
	}
}

// Start validates the control command and launches the session run in the
// background. It rejects a non-positive time limit, a running session and an
// insufficient participant count, all without broadcasting anything.
func (e *Engine) Start(timeLimit time.Duration) error {
	if timeLimit <= 0 {
		return domain.ErrInvalidTimeLimit
	}
	if err := e.session.BeginRun(e.cfg.MinParticipants); err != nil {
		return err
	}
	go e.run(timeLimit)
	return nil
}

func (e *Engine) run(timeLimit time.Duration) {
	defer e.session.EndRun()

	e.log.Info().
		Int("questions", len(e.questions)).
		Int("participants", e.session.Len()).
		Dur("time_limit", timeLimit).
		Msg("session started")

	e.session.ResetScores()
	seconds := int(timeLimit / time.Second)

	for i, q := range e.questions {
		e.session.Broadcast(QuestionAnnounce{Index: i + 1, Question: q, Seconds: seconds})

		parts := e.session.Participants()
		answers, dropped := collectAnswers(parts, timeLimit)
		e.session.remove(dropped...)

		results := e.session.ApplyRound(q, parts, answers)
		e.session.Broadcast(Feedback{Results: results})

		e.log.Info().Int("round", i+1).Int("answers", len(answers)).Int("dropped", len(dropped)).Msg("round complete")

		if i < len(e.questions)-1 {
			e.clock.Sleep(e.cfg.GracePause)
		}
	}

	entries := e.session.Standings()
	e.session.Broadcast(FinalScores{Entries: entries})

	if names := winners(entries); len(names) > 0 {
		e.session.Broadcast(WinnerAnnounce{Names: names})
	} else {
		e.session.Broadcast(NoWinner{})
	}

	if e.sink != nil {
		if err := e.sink.ArchiveFinalScores(context.Background(), entries); err != nil {
			e.log.Warn().Err(err).Msg("result archive failed")
		}
	}
	e.log.Info().Int("participants", len(entries)).Msg("session finished")
}

// winners returns every nickname tied on the maximum score, or nothing when
// the maximum is zero.
func winners(entries []domain.SnapshotEntry) []string {
	max := 0
	for _, e := range entries {
		if e.Score > max {
			max = e.Score
		}
	}
	if max == 0 {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.Score == max {
			names = append(names, e.Nickname)
		}
	}
	return names
}
