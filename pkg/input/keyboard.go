package input

import (
	"strings"
	"unicode"

	"github.com/eiannone/keyboard"
)

// CellKeys maps keys to cell ids in board order. The first twelve follow the
// default 4 x 3 grid on a QWERTY layout.
const CellKeys = "qwerasdfzxcv1234567890"

// KeyboardHandler handles keyboard input
type KeyboardHandler struct {
	inputChan chan KeyInput
}

// KeyInput represents a keyboard input event
type KeyInput struct {
	Char rune
	Key  keyboard.Key
}

// NewKeyboardHandler creates a new keyboard input handler
func NewKeyboardHandler() *KeyboardHandler {
	return &KeyboardHandler{
		inputChan: make(chan KeyInput),
	}
}

// Start begins listening for keyboard input
func (h *KeyboardHandler) Start() error {
	if err := keyboard.Open(); err != nil {
		return err
	}

	go func() {
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			h.inputChan <- KeyInput{Char: char, Key: key}
		}
	}()

	return nil
}

// Stop stops the keyboard handler
func (h *KeyboardHandler) Stop() {
	keyboard.Close()
}

// GetInputChan returns the input channel
func (h *KeyboardHandler) GetInputChan() <-chan KeyInput {
	return h.inputChan
}

// ParseCell returns the cell id bound to the key, if it is on a board of boardSize cells
func ParseCell(input KeyInput, boardSize int) (cellID int, isValid bool) {
	if input.Char == 0 {
		return 0, false
	}
	idx := strings.IndexRune(CellKeys, unicode.ToLower(input.Char))
	if idx < 0 || idx >= boardSize {
		return 0, false
	}
	return idx, true
}

// Labels returns the key label for each of the first boardSize cells
func Labels(boardSize int) []string {
	n := boardSize
	if n > len(CellKeys) {
		n = len(CellKeys)
	}
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i] = string(CellKeys[i])
	}
	return labels
}

// IsQuit checks if the input is a quit command
func IsQuit(input KeyInput) bool {
	return input.Key == keyboard.KeyEsc || input.Key == keyboard.KeyCtrlC
}

// IsStart checks if the input is a start command
func IsStart(input KeyInput) bool {
	return input.Key == keyboard.KeySpace || input.Char == ' '
}

// IsReset checks if the input is a reset command
func IsReset(input KeyInput) bool {
	return input.Key == keyboard.KeyEnter
}
