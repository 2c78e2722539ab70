// internal/dialog/phrases.go
package dialog

import (
	"math/rand/v2"
	"sync"
)

var (
	DefaultPhrases = []string{
		"Не понял Вас, повторите",
		"Что что? Повторите еще раз",
	}

	GreetingPhrases = []string{
		"Добрый день!",
		"Здравствуйте!",
		"Приветствую вас!",
	}

	// GreetingFollowUps includes an empty option, so a greeting may end with a bare space.
	GreetingFollowUps = []string{
		"Какой у вас вопрос?",
		"Меня зовут Тоша. Чем я могу помочь?",
		"",
	}

	GoodbyePhrases = []string{
		"Всего доброго",
		"До свидания",
		"Всегда рад помочь",
	}

	ThanksPhrases = []string{
		"Пожалуйста!",
		"Рад был помочь",
		"Обращайтесь!",
	}
)

const (
	notImplementedApology = "Извините, я пока не умею отвечать на такой вопрос"
	dataUnavailableReply  = "Извините, сейчас я не могу получить эти сведения. Попробуйте позже"
)

// Chooser picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Chooser interface {
	IntN(n int) int
}

// lockedChooser serialises access so one dispatcher can serve many sessions.
type lockedChooser struct {
	mu sync.Mutex
	c  Chooser
}

func (l *lockedChooser) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.IntN(n)
}

// NewChooser returns a seeded chooser; seed 0 draws a random seed.
func NewChooser(seed int64) Chooser {
	if seed == 0 {
		seed = rand.Int64()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
}

func pick(c Chooser, phrases []string) string {
	if len(phrases) == 0 {
		return ""
	}
	return phrases[c.IntN(len(phrases))]
}
