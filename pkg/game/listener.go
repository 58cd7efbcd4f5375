package game

// Listener receives engine notifications. Methods are called with the engine
// lock held, so implementations must not call back into the engine synchronously.
type Listener interface {
	BoardChanged(board Board)
	ScoreChanged(score int)
	TimerChanged(remainingSeconds int)
	GameOver(reason Reason)
	StartControlChanged(enabled bool)
}

// NopListener ignores every notification. Embed it to implement only some methods.
type NopListener struct{}

func (NopListener) BoardChanged(Board) {}
func (NopListener) ScoreChanged(int) {}
func (NopListener) TimerChanged(int) {}
func (NopListener) GameOver(Reason) {}
func (NopListener) StartControlChanged(bool) {}

// MultiListener fans notifications out to several listeners in order
type MultiListener []Listener

func (m MultiListener) BoardChanged(board Board) {
	for _, l := range m {
		l.BoardChanged(board)
	}
}

func (m MultiListener) ScoreChanged(score int) {
	for _, l := range m {
		l.ScoreChanged(score)
	}
}

func (m MultiListener) TimerChanged(remainingSeconds int) {
	for _, l := range m {
		l.TimerChanged(remainingSeconds)
	}
}

func (m MultiListener) GameOver(reason Reason) {
	for _, l := range m {
		l.GameOver(reason)
	}
}

func (m MultiListener) StartControlChanged(enabled bool) {
	for _, l := range m {
		l.StartControlChanged(enabled)
	}
}
