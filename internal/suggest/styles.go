package suggest

// 답변 스타일 (key는 API/DB에 저장되는 이름, Tone은 설명용 포르투갈어)
type Style struct {
	Key         string
	Tone        string
	Description string
}

var styleOrder = []string{"casual", "flirty", "funny", "thoughtful", "engaging"}

var styles = map[string]Style{
	"casual": {
		Key:         "casual",
		Tone:        "descontraído",
		Description: "Resposta leve e natural, sem pressão.",
	},
	"flirty": {
		Key:         "flirty",
		Tone:        "envolvente",
		Description: "Resposta com um toque de flerte e charme.",
	},
	"funny": {
		Key:         "funny",
		Tone:        "divertido",
		Description: "Resposta bem-humorada para descontrair.",
	},
	"thoughtful": {
		Key:         "thoughtful",
		Tone:        "reflexivo",
		Description: "Resposta mais profunda e atenciosa.",
	},
	"engaging": {
		Key:         "engaging",
		Tone:        "questionador",
		Description: "Resposta que devolve uma pergunta e mantém o papo.",
	},
}

func GetStyle(key string) (Style, bool) {
	style, exists := styles[key]
	return style, exists
}

// Styles 기본 순서대로 전체 스타일
func Styles() []Style {
	out := make([]Style, 0, len(styleOrder))
	for _, key := range styleOrder {
		out = append(out, styles[key])
	}
	return out
}
