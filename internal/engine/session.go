package engine

import (
	"bufio"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/EryGltkn/CN-termproject/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const nicknamePrompt = "Enter your nickname: "

// Participant is one connected player. The connection is owned by the
// session entry: it is read by exactly one collector goroutine per round and
// written by the broadcaster.
type Participant struct {
	nickname string
	conn     net.Conn
	reader   *bufio.Reader
	score    int
}

// Nickname returns the self-reported identifier from the handshake.
func (p *Participant) Nickname() string { return p.nickname }

func (p *Participant) send(payload string, timeout time.Duration) error {
	if timeout > 0 {
		_ = p.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	_, err := p.conn.Write([]byte(payload))
	return err
}

// Session owns the participant registry, the score map and the running flag
// behind a single lock. The lock guards in-memory bookkeeping only; all
// network I/O happens outside it.
type Session struct {
	clock        clockwork.Clock
	log          zerolog.Logger
	writeTimeout time.Duration

	mu           sync.Mutex
	participants []*Participant
	running      bool
	subscribers  map[chan domain.Snapshot]struct{}
}

// NewSession builds an empty session registry. writeTimeout bounds each
// per-participant broadcast write; zero disables the deadline.
func NewSession(clock clockwork.Clock, log zerolog.Logger, writeTimeout time.Duration) *Session {
	return &Session{
		clock:        clock,
		log:          log,
		writeTimeout: writeTimeout,
		subscribers:  make(map[chan domain.Snapshot]struct{}),
	}
}

// Register performs the nickname handshake on conn and, on success, inserts
// the new participant with a zero score. A closed connection or an empty
// nickname discards the attempt; the caller still owns conn on error.
func (s *Session) Register(conn net.Conn) (*Participant, error) {
	p := &Participant{conn: conn, reader: bufio.NewReader(conn)}
	if err := p.send(nicknamePrompt, s.writeTimeout); err != nil {
		return nil, fmt.Errorf("nickname prompt: %w", err)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("nickname handshake: %w", err)
	}
	p.nickname = strings.TrimSpace(line)
	if p.nickname == "" {
		return nil, domain.ErrEmptyNickname
	}

	s.mu.Lock()
	s.participants = append(s.participants, p)
	s.notifyLocked()
	s.mu.Unlock()

	if err := p.send(Idle{}.Render(), s.writeTimeout); err != nil {
		s.remove(p)
		return nil, fmt.Errorf("idle notice: %w", err)
	}
	return p, nil
}

// Participants returns a fixed snapshot of the current registry.
func (s *Session) Participants() []*Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Participant, len(s.participants))
	copy(out, s.participants)
	return out
}

// Len reports the current participant count.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants)
}

func (s *Session) remove(victims ...*Participant) {
	if len(victims) == 0 {
		return
	}
	gone := make(map[*Participant]struct{}, len(victims))
	for _, v := range victims {
		gone[v] = struct{}{}
	}

	s.mu.Lock()
	kept := s.participants[:0]
	removed := 0
	for _, p := range s.participants {
		if _, ok := gone[p]; ok {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.participants = kept
	if removed > 0 {
		s.notifyLocked()
	}
	s.mu.Unlock()

	for v := range gone {
		_ = v.conn.Close()
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Int("remaining", s.Len()).Msg("participants evicted")
	}
}

// BeginRun flips the session to running if it is idle and at least min
// participants are connected. Rejections leave the state untouched.
func (s *Session) BeginRun(min int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return domain.ErrSessionRunning
	}
	if len(s.participants) < min {
		return domain.ErrNotEnoughParticipants
	}
	s.running = true
	s.notifyLocked()
	return nil
}

// EndRun returns the session to idle, ready for a new run.
func (s *Session) EndRun() {
	s.mu.Lock()
	s.running = false
	s.notifyLocked()
	s.mu.Unlock()
}

// ResetScores zeroes every current participant's score. Called once per
// session, before the first question.
func (s *Session) ResetScores() {
	s.mu.Lock()
	for _, p := range s.participants {
		p.score = 0
	}
	s.notifyLocked()
	s.mu.Unlock()
}

// ApplyRound grades one round's collected answers: each exact match with the
// correct label earns one point. It returns per-participant results in
// round-start order, including participants evicted during collection.
func (s *Session) ApplyRound(q domain.Question, parts []*Participant, answers map[*Participant]domain.Answer) []RoundResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]RoundResult, 0, len(parts))
	for _, p := range parts {
		answer, ok := answers[p]
		if !ok {
			answer = domain.AnswerNone
		}
		correct := string(answer) == q.Answer
		if correct {
			p.score++
		}
		results = append(results, RoundResult{
			Nickname:     p.nickname,
			Answer:       answer,
			Correct:      correct,
			CorrectLabel: q.Answer,
		})
	}
	s.notifyLocked()
	return results
}

// Standings returns (nickname, score) pairs in join order, as used by the
// final-scores wire message.
func (s *Session) Standings() []domain.SnapshotEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]domain.SnapshotEntry, 0, len(s.participants))
	for _, p := range s.participants {
		entries = append(entries, domain.SnapshotEntry{Nickname: p.nickname, Score: p.score})
	}
	return entries
}

// Snapshot returns the presentation view: score-ordered entries plus the
// running flag, read atomically.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every registry or
// round-boundary change, starting with the current state. The caller must
// invoke cancel to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// The channel is fresh and buffered, so this never blocks; sending
	// under the lock keeps it ordered before any later notification.
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) notifyLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale update so a slow operator view never blocks
			// registry mutation.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() domain.Snapshot {
	entries := make([]domain.SnapshotEntry, 0, len(s.participants))
	for _, p := range s.participants {
		entries = append(entries, domain.SnapshotEntry{Nickname: p.nickname, Score: p.score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Nickname < entries[j].Nickname
	})
	return domain.Snapshot{
		Entries:   entries,
		Running:   s.running,
		UpdatedAt: s.clock.Now(),
	}
}
