package engine

// Broadcast renders msg once and sends it to every participant in a fixed
// snapshot of the registry. Connections that fail to accept the write are
// removed in a single pass after the send loop; the lock is never held
// across a write.
func (s *Session) Broadcast(msg Message) {
	parts := s.Participants()
	payload := msg.Render()

	var failed []*Participant
	for _, p := range parts {
		if err := p.send(payload, s.writeTimeout); err != nil {
			s.log.Debug().Str("nickname", p.nickname).Err(err).Msg("broadcast write failed")
			failed = append(failed, p)
		}
	}
	s.remove(failed...)
}
