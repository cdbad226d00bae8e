package problem

import (
	"fmt"
	"strings"
)

// Difficulty is the closed set of problem difficulty levels.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// Embed accent colors, one per difficulty.
const (
	ColorEasy    = 0x2ECC71
	ColorMedium  = 0xE67E22
	ColorHard    = 0xE74C3C
	ColorUnknown = 0x3498DB
)

// Code returns the small integer stored in the database.
func (d Difficulty) Code() int { return int(d) }

// Label returns the user-facing name.
func (d Difficulty) Label() string {
	switch d {
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	}
	return "Unknown"
}

// Color returns the embed accent color.
func (d Difficulty) Color() int {
	switch d {
	case Easy:
		return ColorEasy
	case Medium:
		return ColorMedium
	case Hard:
		return ColorHard
	}
	return ColorUnknown
}

// DifficultyFromCode maps a storage code back to a Difficulty.
// An unrecognized code indicates corrupt upstream data and is an error.
func DifficultyFromCode(code int) (Difficulty, error) {
	switch code {
	case 0:
		return Easy, nil
	case 1:
		return Medium, nil
	case 2:
		return Hard, nil
	}
	return 0, fmt.Errorf("%w: code %d", ErrUnknownDifficulty, code)
}

// DifficultyFromLabel maps a display label (case-insensitive) to a Difficulty.
func DifficultyFromLabel(label string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, label)
}

// DisplayLabel is the presentation-only variant of DifficultyFromCode: an
// unrecognized code renders as "Unknown" instead of failing. Persistence
// paths must use DifficultyFromCode and surface the error.
func DisplayLabel(code int) string {
	d, err := DifficultyFromCode(code)
	if err != nil {
		return "Unknown"
	}
	return d.Label()
}

// DisplayColor is the presentation-only color lookup, defaulting to blue.
func DisplayColor(code int) int {
	d, err := DifficultyFromCode(code)
	if err != nil {
		return ColorUnknown
	}
	return d.Color()
}
