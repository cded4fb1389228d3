package clock

import "time"

// Clock отдаёт текущее время. Движок жизненного цикла получает его как
// зависимость, чтобы просрочку и метки времени можно было проверять
// детерминированно.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

func New() Clock {
	return realClock{}
}
