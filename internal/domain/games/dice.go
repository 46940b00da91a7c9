package games

// DiceOutcome classifies a two-dice roll.
type DiceOutcome string

// Dice outcomes, from best to plainest.
const (
	DiceDoubleSix DiceOutcome = "double_six"
	DiceSnakeEyes DiceOutcome = "snake_eyes"
	DiceDouble    DiceOutcome = "double"
	DicePlain     DiceOutcome = "plain"
)

const (
	diceFaces      = 6
	diceFaceEmojis = "⚀⚁⚂⚃⚄⚅"
)

// DiceRoll is the result of rolling two six-sided dice.
type DiceRoll struct {
	Die1    int         `json:"die1"`
	Die2    int         `json:"die2"`
	Total   int         `json:"total"`
	Faces   string      `json:"faces"`
	Outcome DiceOutcome `json:"outcome"`
	Message string      `json:"message,omitempty"`
}

// RollDice rolls two dice from src.
func RollDice(src Source) DiceRoll {
	d1 := src.IntN(diceFaces) + 1
	d2 := src.IntN(diceFaces) + 1
	r := DiceRoll{Die1: d1, Die2: d2, Total: d1 + d2, Faces: DieFace(d1) + " " + DieFace(d2)}

	switch {
	case r.Total == 2*diceFaces:
		r.Outcome, r.Message = DiceDoubleSix, "🎉 Dupla seis! Sorte máxima! 🎉"
	case r.Total == 2:
		r.Outcome, r.Message = DiceSnakeEyes, "💀 Azar total! 💀"
	case d1 == d2:
		r.Outcome, r.Message = DiceDouble, "✨ Dupla! ✨"
	default:
		r.Outcome = DicePlain
	}
	return r
}

// DieFace returns the die glyph for a face value in [1, 6].
func DieFace(v int) string {
	faces := []rune(diceFaceEmojis)
	if v < 1 || v > len(faces) {
		return "?"
	}
	return string(faces[v-1])
}
