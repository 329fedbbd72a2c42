package engine

import (
	"net"
	"sync"
	"time"

	"github.com/EryGltkn/CN-termproject/internal/domain"
)

// roundAnswers is the write-once answer map for a single round. It carries
// its own lock so collection never holds the registry lock for the length of
// the answer window, and so the next round starts from a fresh buffer.
type roundAnswers struct {
	mu      sync.Mutex
	answers map[*Participant]domain.Answer
	dropped []*Participant
}

func newRoundAnswers(n int) *roundAnswers {
	return &roundAnswers{answers: make(map[*Participant]domain.Answer, n)}
}

// record stores the first answer for p; later writes are no-ops.
func (r *roundAnswers) record(p *Participant, a domain.Answer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.answers[p]; ok {
		return false
	}
	r.answers[p] = a
	return true
}

func (r *roundAnswers) drop(p *Participant) {
	r.mu.Lock()
	r.dropped = append(r.dropped, p)
	r.mu.Unlock()
}

// collectAnswers gathers at most one answer per participant within limit.
// One goroutine per participant performs a single deadline-bounded receive;
// a timeout records AnswerNone, any other receive error records AnswerNone
// and marks the participant for eviction. The join bounds the round: it
// returns once every receive has completed, which is no later than the
// shared deadline plus scheduling overhead, and earlier when everyone has
// answered.
func collectAnswers(parts []*Participant, limit time.Duration) (map[*Participant]domain.Answer, []*Participant) {
	round := newRoundAnswers(len(parts))
	deadline := time.Now().Add(limit)

	var wg sync.WaitGroup
	for _, p := range parts {
		wg.Add(1)
		go func(p *Participant) {
			defer wg.Done()
			_ = p.conn.SetReadDeadline(deadline)
			line, err := p.reader.ReadString('\n')
			_ = p.conn.SetReadDeadline(time.Time{})
			if line == "" {
				round.record(p, domain.AnswerNone)
				if !isTimeout(err) {
					round.drop(p)
				}
				return
			}
			round.record(p, domain.ParseAnswer(line))
			if err != nil && !isTimeout(err) {
				// Partial line from a dead connection: the answer counts
				// for this round, the participant still goes. A partial
				// line cut off by the deadline keeps the participant.
				round.drop(p)
			}
		}(p)
	}
	wg.Wait()

	return round.answers, round.dropped
}

// isTimeout reports whether err is a read-deadline expiry. Timeouts never
// evict; only real connection failures do.
func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
