package dice

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sourceReader streams bytes drawn from a Source.
type sourceReader struct{ src Source }

func (s sourceReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(s.src.Intn(256))
	}
	return len(p), nil
}

// UUID draws a version 4 UUID from the roller's source, so seeded games
// reproduce their instance ids.
func (r *Roller) UUID(label string) uuid.UUID {
	id := uuid.Must(uuid.NewRandomFromReader(sourceReader{src: r.src}))
	r.logger.Debug("uuid roll", zap.String("label", label), zap.String("result", id.String()))
	return id
}
