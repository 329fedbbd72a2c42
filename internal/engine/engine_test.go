package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/EryGltkn/CN-termproject/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

func singleQuestionBank() domain.Bank {
	return domain.Bank{
		ID: "test",
		Questions: []domain.Question{
			{
				Prompt: "Which port does HTTPS use by default?",
				A:      "80",
				B:      "443",
				C:      "8080",
				D:      "22",
				Answer: "B",
			},
		},
	}
}

func newTestEngine(s *Session, bank domain.Bank, sink ResultSink) *Engine {
	cfg := Config{MinParticipants: 3, GracePause: 0}
	return NewEngine(s, bank, cfg, clockwork.NewRealClock(), zerolog.Nop(), sink)
}

// waitSessionEnd blocks until the run has broadcast its final scores and the
// session is idle again. runs is the number of completed sessions expected
// in peer's output.
func waitSessionEnd(t *testing.T, s *Session, peer *fakePeer, runs int) {
	t.Helper()
	waitFor(t, func() bool {
		return strings.Count(peer.received(), "Final Scores:") >= runs && !s.Snapshot().Running
	})
}

func TestSessionScenarioMixedAnswers(t *testing.T) {
	s := newTestSession()
	peer1, _ := join(t, s, "Alice")
	peer2, _ := join(t, s, "Bob")
	_, _ = join(t, s, "Carol")

	eng := newTestEngine(s, singleQuestionBank(), nil)
	if err := eng.Start(500 * time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}

	peer1.send("B\n")
	peer2.send("c\n")
	// Carol never answers.

	waitSessionEnd(t, s, peer1, 1)

	scores := map[string]int{}
	for _, e := range s.Snapshot().Entries {
		scores[e.Nickname] = e.Score
	}
	want := map[string]int{"Alice": 1, "Bob": 0, "Carol": 0}
	for nick, score := range want {
		if scores[nick] != score {
			t.Fatalf("expected %s=%d, got %d (scores %+v)", nick, score, scores[nick], scores)
		}
	}

	waitFor(t, func() bool {
		out := peer1.received()
		return strings.Contains(out, "Winner(s): Alice") &&
			strings.Contains(out, "Alice got it right!") &&
			strings.Contains(out, "Bob got it wrong. Correct was B.")
	})

	out := peer1.received()
	if !strings.Contains(out, "Question 1: Which port does HTTPS use by default?") {
		t.Fatalf("missing question broadcast:\n%s", out)
	}
	if !strings.Contains(out, "seconds to answer.") {
		t.Fatalf("missing time limit line:\n%s", out)
	}
	if strings.Contains(out, "No winner this round.") {
		t.Fatalf("unexpected no-winner line:\n%s", out)
	}
}

func TestSessionNoWinnerWhenAllZero(t *testing.T) {
	s := newTestSession()
	peer1, _ := join(t, s, "Alice")
	join(t, s, "Bob")
	join(t, s, "Carol")

	eng := newTestEngine(s, singleQuestionBank(), nil)
	if err := eng.Start(200 * time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitSessionEnd(t, s, peer1, 1)

	waitFor(t, func() bool {
		return strings.Contains(peer1.received(), "No winner this round.")
	})
	if strings.Contains(peer1.received(), "Winner(s):") {
		t.Fatalf("unexpected winner line:\n%s", peer1.received())
	}
}

func TestSessionTieProducesMultipleWinners(t *testing.T) {
	s := newTestSession()
	peer1, _ := join(t, s, "Alice")
	peer2, _ := join(t, s, "Bob")
	_, _ = join(t, s, "Carol")

	eng := newTestEngine(s, singleQuestionBank(), nil)
	if err := eng.Start(500 * time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}
	peer1.send("B\n")
	peer2.send("b\n")
	waitSessionEnd(t, s, peer1, 1)

	waitFor(t, func() bool {
		return strings.Contains(peer1.received(), "Winner(s): Alice, Bob")
	})
}

func TestStartRejectsTooFewParticipants(t *testing.T) {
	s := newTestSession()
	peer1, _ := join(t, s, "Alice")
	peer2, _ := join(t, s, "Bob")

	eng := newTestEngine(s, singleQuestionBank(), nil)
	if err := eng.Start(time.Second); err != domain.ErrNotEnoughParticipants {
		t.Fatalf("expected ErrNotEnoughParticipants, got %v", err)
	}
	if s.Snapshot().Running {
		t.Fatal("rejected start must stay idle")
	}

	// No question must have been broadcast.
	time.Sleep(50 * time.Millisecond)
	for _, peer := range []*fakePeer{peer1, peer2} {
		if strings.Contains(peer.received(), "Question") {
			t.Fatalf("rejected start must not broadcast:\n%s", peer.received())
		}
	}
}

func TestStartRejectsBadTimeLimit(t *testing.T) {
	s := newTestSession()
	eng := newTestEngine(s, singleQuestionBank(), nil)
	if err := eng.Start(0); err != domain.ErrInvalidTimeLimit {
		t.Fatalf("expected ErrInvalidTimeLimit, got %v", err)
	}
	if err := eng.Start(-time.Second); err != domain.ErrInvalidTimeLimit {
		t.Fatalf("expected ErrInvalidTimeLimit, got %v", err)
	}
}

func TestMidRoundDisconnectIsEvicted(t *testing.T) {
	s := newTestSession()
	peer1, _ := join(t, s, "Alice")
	peer2, _ := join(t, s, "Bob")
	peer3, _ := join(t, s, "Carol")

	eng := newTestEngine(s, singleQuestionBank(), nil)
	if err := eng.Start(500 * time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}
	peer1.send("B\n")
	peer2.send("B\n")
	// Carol drops after the question went out, before answering.
	waitFor(t, func() bool {
		return strings.Contains(peer3.received(), "Question 1:")
	})
	_ = peer3.conn.Close()

	waitSessionEnd(t, s, peer1, 1)

	snap := s.Snapshot()
	for _, e := range snap.Entries {
		if e.Nickname == "Carol" {
			t.Fatalf("Carol must be out of the final standings: %+v", snap.Entries)
		}
	}
	if len(snap.Entries) != 2 {
		t.Fatalf("expected 2 remaining participants, got %+v", snap.Entries)
	}
	// Carol was present at round start, so she is graded as none.
	waitFor(t, func() bool {
		return strings.Contains(peer1.received(), "Carol got it wrong. Correct was B.")
	})
}

func TestScoresResetOnNewSession(t *testing.T) {
	s := newTestSession()
	peer1, _ := join(t, s, "Alice")
	peer2, _ := join(t, s, "Bob")
	peer3, _ := join(t, s, "Carol")

	eng := newTestEngine(s, singleQuestionBank(), nil)
	if err := eng.Start(500 * time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}
	peer1.send("B\n")
	peer2.send("B\n")
	peer3.send("B\n")
	waitSessionEnd(t, s, peer1, 1)
	for _, e := range s.Snapshot().Entries {
		if e.Score != 1 {
			t.Fatalf("expected every score 1 after first run, got %+v", s.Snapshot().Entries)
		}
	}

	// Second run: nobody answers; scores must reset to 0, not accumulate.
	if err := eng.Start(200 * time.Millisecond); err != nil {
		t.Fatalf("second start: %v", err)
	}
	waitSessionEnd(t, s, peer1, 2)
	for _, e := range s.Snapshot().Entries {
		if e.Score != 0 {
			t.Fatalf("expected scores reset to 0, got %+v", s.Snapshot().Entries)
		}
	}
}

type captureSink struct {
	ch chan []domain.SnapshotEntry
}

func (c *captureSink) ArchiveFinalScores(_ context.Context, entries []domain.SnapshotEntry) error {
	c.ch <- entries
	return nil
}

func TestFinalScoresReachSink(t *testing.T) {
	s := newTestSession()
	peer1, _ := join(t, s, "Alice")
	join(t, s, "Bob")
	join(t, s, "Carol")

	sink := &captureSink{ch: make(chan []domain.SnapshotEntry, 1)}
	eng := newTestEngine(s, singleQuestionBank(), sink)

	if err := eng.Start(400 * time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}
	peer1.send("B\n")

	select {
	case entries := <-sink.ch:
		if len(entries) != 3 {
			t.Fatalf("expected 3 archived entries, got %+v", entries)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("sink never invoked")
	}
}
