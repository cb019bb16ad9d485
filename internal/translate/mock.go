package translate

import (
	"context"
	"time"
)

const mockSuffix = " (తెలుగులో: నకిలీ అనువాదం)"

// MockTranslator simula el servicio externo mientras no esté disponible.
type MockTranslator struct {
	Delay time.Duration
}

func (m MockTranslator) Translate(ctx context.Context, text string) (string, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return text + mockSuffix, nil
}
