package coach

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/orbitype/internal/model"
)

const (
	// DefaultDrill is used when a weak-key drill cannot be generated.
	DefaultDrill = "The quick brown fox jumps over the lazy dog. Practice makes perfect with consistent rhythm and accuracy."
	// DefaultSpeedDrill is used when a speed drill cannot be generated.
	DefaultSpeedDrill = "Speed drills focus on quick, common words. Type fast and maintain your excellent accuracy. Every word counts."

	minDrillLength = 20
)

// ErrNoGenerator is returned by generators that are not configured.
var ErrNoGenerator = errors.New("drill generator not configured")

// Generator produces practice text. Implementations are external collaborators.
type Generator interface {
	Drill(ctx context.Context, keys []rune) (string, error)
	SpeedDrill(ctx context.Context) (string, error)
}

// Drill is a generated passage and what it targets.
type Drill struct {
	Text     string
	Keys     []rune
	Fallback bool
}

// DrillService turns weak keys into a practice passage. It never fails.
type DrillService struct {
	gen    Generator
	logger *zap.Logger
}

// NewDrillService creates a service. A nil generator always yields defaults.
func NewDrillService(gen Generator, logger *zap.Logger) *DrillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DrillService{gen: gen, logger: logger}
}

// Generate picks weak keys from stats and asks the generator for a drill.
func (s *DrillService) Generate(ctx context.Context, stats []model.KeyStat) Drill {
	weak := WeakKeysForDrill(stats)
	if len(weak) == 0 {
		return s.speed(ctx)
	}
	keys := make([]rune, len(weak))
	for i, st := range weak {
		keys[i] = st.Key
	}
	if s.gen == nil {
		return Drill{Text: DefaultDrill, Keys: keys, Fallback: true}
	}
	text, err := s.gen.Drill(ctx, keys)
	if err == nil {
		text = CleanDrill(text)
		if len(text) >= minDrillLength {
			return Drill{Text: text, Keys: keys}
		}
		err = errors.New("drill text too short")
	}
	s.logger.Warn("drill generation failed, using default drill", zap.String("keys", string(keys)), zap.Error(err))
	return Drill{Text: DefaultDrill, Keys: keys, Fallback: true}
}

func (s *DrillService) speed(ctx context.Context) Drill {
	if s.gen == nil {
		return Drill{Text: DefaultSpeedDrill, Fallback: true}
	}
	text, err := s.gen.SpeedDrill(ctx)
	if err != nil {
		s.logger.Warn("speed drill generation failed", zap.Error(err))
		return Drill{Text: DefaultSpeedDrill, Fallback: true}
	}
	text = CleanDrill(text)
	if text == "" {
		return Drill{Text: DefaultSpeedDrill, Fallback: true}
	}
	return Drill{Text: text}
}

var (
	codeFence = regexp.MustCompile("(?s)```.*?```")
	header    = regexp.MustCompile(`(?m)^#.*$`)
	spaces    = regexp.MustCompile(`\s+`)
)

// CleanDrill strips markdown from generated text and collapses whitespace.
func CleanDrill(text string) string {
	text = codeFence.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "`", "")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")
	text = header.ReplaceAllString(text, "")
	return strings.TrimSpace(spaces.ReplaceAllString(text, " "))
}
