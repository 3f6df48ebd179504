/**
* Name: 			generator.go
* Description: 		상대방 마지막 메시지에 대한 스타일별 답변 후보 생성
* Workflow: 		메시지 분석 -> 템플릿 선택 -> (선택) LLM 문장 다듬기 -> 코치 설명, 타이밍
 */

package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"FlertaAI_ReplyAssistant/internal/models"
)

var (
	ErrUnknownStyle = errors.New("unknown reply style")
	ErrInvalidCount = errors.New("count must be between 1 and 5")
)

// Options 요청의 style 객체 ({"styles": [...], "count": n})
type Options struct {
	Styles []string `json:"styles,omitempty"`
	Count  int      `json:"count,omitempty"`
}

// ParseOptions 비어있으면 기본값, 알 수 없는 키는 무시
func ParseOptions(raw json.RawMessage) (Options, error) {
	var opts Options
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return opts, nil
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return opts, fmt.Errorf("invalid style: %w", err)
	}
	_, err := opts.resolve()
	return opts, err
}

func (o Options) resolve() ([]Style, error) {
	var out []Style
	if len(o.Styles) == 0 {
		out = Styles()
	} else {
		seen := make(map[string]bool, len(o.Styles))
		for _, key := range o.Styles {
			key = strings.ToLower(strings.TrimSpace(key))
			style, ok := GetStyle(key)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownStyle, key)
			}
			if !seen[key] {
				seen[key] = true
				out = append(out, style)
			}
		}
	}
	if o.Count < 0 || o.Count > len(styleOrder) {
		return nil, ErrInvalidCount
	}
	if o.Count > 0 && o.Count < len(out) {
		out = out[:o.Count]
	}
	return out, nil
}

type Request struct {
	LastMessage   string
	History       []models.Turn
	Options       Options
	Tone          models.Tone
	Timezone      string
	BlockedTopics []string
	CoachMode     bool
}

// 답변 후보 한 개
type Candidate struct {
	Style       string  `json:"style"`
	Text        string  `json:"text"`
	Explanation string  `json:"explanation"`
	Confidence  float64 `json:"confidence"`
	Timing      string  `json:"timing"`
}

// Phraser 템플릿 초안을 대화 맥락에 맞게 다시 쓰는 LLM 어댑터
type Phraser interface {
	Phrase(ctx context.Context, req PhraseRequest) (string, error)
}

type PhraseRequest struct {
	Style         Style
	Draft         string
	LastMessage   string
	History       []models.Turn
	Context       MessageContext
	Tone          models.Tone
	BlockedTopics []string
}

type Generator struct {
	phraser Phraser
	logger  *zap.Logger
	now     func() time.Time

	mu  sync.Mutex // rand.Rand는 동시 사용 불가
	rnd *rand.Rand
}

type Option func(*Generator)

func WithPhraser(p Phraser) Option {
	return func(g *Generator) { g.phraser = p }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func WithRand(rnd *rand.Rand) Option {
	return func(g *Generator) { g.rnd = rnd }
}

func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		logger: zap.NewNop(),
		now:    time.Now,
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate 스타일 순서를 유지한 후보 목록 반환
func (g *Generator) Generate(ctx context.Context, req Request) ([]Candidate, error) {
	styleList, err := req.Options.resolve()
	if err != nil {
		return nil, err
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = models.DefaultTimezone
	}

	msgCtx := AnalyzeMessage(req.LastMessage)
	timing := TimingAdvice(g.now(), timezone)

	candidates := make([]Candidate, len(styleList))
	g.mu.Lock()
	for i, style := range styleList {
		text := brazilianTouch(g.rnd, templateFor(g.rnd, msgCtx.category(), style.Key))
		candidates[i] = Candidate{
			Style:      style.Key,
			Text:       text,
			Confidence: g.rnd.Float64()*0.3 + 0.7,
			Timing:     timing,
		}
	}
	g.mu.Unlock()

	if g.phraser != nil {
		g.phraseAll(ctx, req, styleList, msgCtx, candidates)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if req.CoachMode {
		for i := range candidates {
			candidates[i].Explanation = CoachExplanation(candidates[i].Text, styleList[i].Tone, msgCtx)
		}
	}
	return candidates, nil
}

// 스타일별 LLM 호출을 동시에 수행, 실패한 스타일은 템플릿 유지
func (g *Generator) phraseAll(ctx context.Context, req Request, styleList []Style, msgCtx MessageContext, candidates []Candidate) {
	var eg errgroup.Group
	for i := range candidates {
		eg.Go(func() error {
			text, err := g.phraser.Phrase(ctx, PhraseRequest{
				Style:         styleList[i],
				Draft:         candidates[i].Text,
				LastMessage:   req.LastMessage,
				History:       req.History,
				Context:       msgCtx,
				Tone:          req.Tone,
				BlockedTopics: req.BlockedTopics,
			})
			if err != nil {
				g.logger.Warn("phrase failed, keeping template", zap.String("style", styleList[i].Key), zap.Error(err))
				return nil
			}
			text = strings.TrimSpace(text)
			if text == "" || IsCliche(text) || mentionsAny(text, req.BlockedTopics) {
				g.logger.Debug("phrase rejected", zap.String("style", styleList[i].Key), zap.String("text", text))
				return nil
			}
			candidates[i].Text = text
			return nil
		})
	}
	_ = eg.Wait()
}

func mentionsAny(text string, topics []string) bool {
	lower := strings.ToLower(text)
	for _, topic := range topics {
		if topic = strings.ToLower(strings.TrimSpace(topic)); topic != "" && strings.Contains(lower, topic) {
			return true
		}
	}
	return false
}
