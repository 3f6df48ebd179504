/**
* Name: 			parser.go
* Description: 		OCR/붙여넣기 텍스트를 화자별 대화 턴으로 분리
* Workflow: 		정규화(길이 검사, 자르기) -> 줄 분리 -> 화자 판별 -> 신뢰도 계산
 */

package conversation

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"FlertaAI_ReplyAssistant/internal/models"
)

const (
	MinTextLength = 10
	MaxTextLength = 10000

	// 이 값 미만이면 사용자에게 화자 확인을 요청
	ConfirmationThreshold = 0.8
)

var (
	ErrTooShort         = errors.New("Texto muito curto para análise")
	ErrSpeakerMismatch  = errors.New("speakers must match the number of turns")
	ErrInvalidSpeaker   = errors.New("speaker must be 'me' or 'other'")
	defaultSelfLabels   = []string{"Você", "Eu"}
	speakerPrefixRegexp = regexp.MustCompile(`^[^:]+:\s*`)
)

// 분석 결과
type Result struct {
	RawText           string
	Turns             []models.Turn
	SpeakerConfidence float64
	NeedsConfirmation bool
}

type Parser struct {
	selfLabels []string
}

// NewParser selfLabels는 "Eu:" 처럼 본인 발화를 나타내는 라벨 (콜론 제외)
func NewParser(selfLabels []string) *Parser {
	labels := make([]string, 0, len(selfLabels))
	for _, l := range selfLabels {
		if l = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(l), ":")); l != "" {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		labels = defaultSelfLabels
	}
	return &Parser{selfLabels: labels}
}

// Normalize 공백 제거, 최소 길이 검사, 최대 길이로 자르기
func Normalize(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if utf8.RuneCountInString(text) < MinTextLength {
		return "", ErrTooShort
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		text = string([]rune(text)[:MaxTextLength])
	}
	return text, nil
}

// Parse 텍스트를 턴 단위로 분리하고 화자 신뢰도를 계산
func (p *Parser) Parse(raw string, now time.Time) (Result, error) {
	text, err := Normalize(raw)
	if err != nil {
		return Result{}, err
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	timestamp := now.UTC().Format(time.RFC3339)
	turns := make([]models.Turn, 0, len(lines))
	for i, line := range lines {
		// 라벨 없는 마지막 줄은 본인이 쓰던 메시지로 간주
		isMe := p.hasSelfLabel(line) || (i == len(lines)-1 && !strings.Contains(line, ":"))

		speaker := models.SpeakerOther
		if isMe {
			speaker = models.SpeakerMe
		}
		turns = append(turns, models.Turn{
			Speaker:      speaker,
			Text:         speakerPrefixRegexp.ReplaceAllString(line, ""),
			Timestamp:    timestamp,
			OriginalLine: line,
		})
	}

	confidence := p.speakerConfidence(turns)
	return Result{
		RawText:           text,
		Turns:             turns,
		SpeakerConfidence: confidence,
		NeedsConfirmation: confidence < ConfirmationThreshold,
	}, nil
}

func (p *Parser) hasSelfLabel(line string) bool {
	for _, label := range p.selfLabels {
		if strings.Contains(line, label+":") {
			return true
		}
	}
	return false
}

// 명시적 라벨이 있으면 +0.3, 화자 교대 비율만큼 최대 +0.2
func (p *Parser) speakerConfidence(turns []models.Turn) float64 {
	if len(turns) == 0 {
		return 0
	}

	confidence := 0.5
	for _, turn := range turns {
		if p.hasExplicitSpeaker(turn.OriginalLine) {
			confidence += 0.3
			break
		}
	}

	alternations := 0
	for i := 1; i < len(turns); i++ {
		if turns[i].Speaker != turns[i-1].Speaker {
			alternations++
		}
	}
	confidence += float64(alternations) / float64(max(1, len(turns)-1)) * 0.2

	return min(1, confidence)
}

func (p *Parser) hasExplicitSpeaker(line string) bool {
	if strings.Contains(line, ":") {
		return true
	}
	for _, label := range p.selfLabels {
		if strings.Contains(line, label) {
			return true
		}
	}
	return false
}

// ConfirmSpeakers 사용자가 확인한 화자로 덮어쓰기, 확인 후 신뢰도는 1
func ConfirmSpeakers(turns []models.Turn, speakers []string) ([]models.Turn, error) {
	if len(turns) != len(speakers) {
		return nil, ErrSpeakerMismatch
	}
	confirmed := make([]models.Turn, len(turns))
	for i, turn := range turns {
		switch speakers[i] {
		case models.SpeakerMe, models.SpeakerOther:
			turn.Speaker = speakers[i]
		default:
			return nil, ErrInvalidSpeaker
		}
		confirmed[i] = turn
	}
	return confirmed, nil
}
