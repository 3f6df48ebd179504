package suggest

import (
	"math/rand/v2"
	"regexp"
	"strings"
)

const (
	categoryQuestion   = "question"
	categoryCompliment = "compliment"
	categoryEmoji      = "emoji"
	categoryGeneral    = "general"
)

var (
	girias       = []string{"massa", "show", "bacana", "legal", "top", "demais"}
	avoidCliches = []string{"oi sumida", "bom dia princesa", "oi linda"}
	slangRegexp  = regexp.MustCompile(`legal|bacana|bom`)
)

// 이모지 답변은 스타일과 무관하게 공용
var emojiResponses = []string{
	"😊 Também estou assim!",
	"Adorei esse emoji 😄",
	"Feeling the same! ✨",
	"Exatamente meu mood agora",
}

// category -> style -> 후보 문장
var templates = map[string]map[string][]string{
	categoryQuestion: {
		"casual": {
			"Boa pergunta! 🤔",
			"Deixa eu pensar...",
			"Interessante você perguntar isso",
		},
		"flirty": {
			"Adorei a curiosidade 😏",
			"Você quer mesmo saber? 😉",
			"Que pergunta mais fofa",
		},
		"funny": {
			"Haha, direto ao ponto né!",
			"Você não perde tempo mesmo 😄",
			"Essa eu não esperava!",
		},
		"thoughtful": {
			"Pergunta boa, vou te responder com calma...",
			"Nunca tinha pensado nisso assim, sabia?",
			"Gosto quando a conversa vai mais fundo",
		},
		"engaging": {
			"Te respondo se você me contar a sua primeiro 😉",
			"Boa! E você, o que acha?",
			"Depende... qual seria a sua resposta?",
		},
	},
	categoryCompliment: {
		"casual": {
			"Que fofo, obrigada! 😊",
			"Ai que legal, valeu!",
			"Nossa, muito gentil!",
		},
		"flirty": {
			"Você que é um charme 😘",
			"Para de me deixar sem graça 😏",
			"Assim você me conquista fácil",
		},
		"funny": {
			"Para, para que eu fico envergonhada 😄",
			"Você tem bom gosto mesmo!",
			"Eita, alguém tá inspirado hoje!",
		},
		"thoughtful": {
			"Fiquei feliz de verdade com isso",
			"Obrigada, isso significa muito vindo de você",
			"Que bom ouvir isso, sério",
		},
		"engaging": {
			"Obrigada! E o que mais chamou sua atenção?",
			"Haha valeu! Agora é sua vez de contar algo sobre você",
			"Sério? Me conta o que você reparou primeiro",
		},
	},
	categoryGeneral: {
		"casual": {
			"Entendi! E você, como está?",
			"Bacana! Conta mais",
			"Interessante... e aí?",
			"Legal! Como foi seu dia?",
		},
		"flirty": {
			"Hmm, me conta mais sobre isso 😏",
			"Adorei saber... e agora?",
			"Que interessante você 😉",
			"Fico curiosa para saber mais",
		},
		"funny": {
			"Haha, você é demais!",
			"Que história! 😄",
			"Nossa, não acredito!",
			"Você sempre me surpreende",
		},
		"thoughtful": {
			"Faz sentido... fiquei pensando nisso agora",
			"Curti sua forma de ver as coisas",
			"Isso diz muito sobre você, de um jeito bom",
		},
		"engaging": {
			"E como isso começou?",
			"Sério? E o que você fez depois?",
			"Me conta mais, o que te fez pensar nisso?",
			"E qual foi a melhor parte?",
		},
	},
}

// templateFor 분류와 스타일에 맞는 문장을 무작위 선택
func templateFor(rnd *rand.Rand, category, style string) string {
	if category == categoryEmoji {
		return pick(rnd, emojiResponses)
	}
	bank := templates[category][style]
	if len(bank) == 0 {
		bank = templates[category]["casual"]
	}
	return pick(rnd, bank)
}

// 30% 확률로 첫 번째 legal/bacana/bom을 다른 gíria로 교체
func brazilianTouch(rnd *rand.Rand, text string) string {
	if rnd.Float64() <= 0.7 {
		return text
	}
	giria := pick(rnd, girias)
	replaced := false
	return slangRegexp.ReplaceAllStringFunc(text, func(m string) string {
		if replaced {
			return m
		}
		replaced = true
		return giria
	})
}

// IsCliche 뻔한 멘트 포함 여부
func IsCliche(text string) bool {
	lower := strings.ToLower(text)
	for _, c := range avoidCliches {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

func pick(rnd *rand.Rand, items []string) string {
	return items[rnd.IntN(len(items))]
}
