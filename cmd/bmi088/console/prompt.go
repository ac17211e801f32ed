package console

import (
	"strings"

	"github.com/chzyer/readline"
)

const (
	Yes = "y"
	No  = "n"
)

// Confirm asks a yes/no question defaulting to no. It returns true without
// asking when assumeYes is set.
func Confirm(question string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	answer, err := prompt(question, No, Yes)
	if err != nil {
		return false, err
	}
	return answer == Yes, nil
}

func prompt(question string, constraints ...string) (string, error) {
	var p strings.Builder
	p.WriteString(question)
	p.WriteString(" [")
	p.WriteString(strings.ToUpper(constraints[0]))
	for _, c := range constraints[1:] {
		p.WriteString("/")
		p.WriteString(c)
	}
	p.WriteString("]: ")
	rl, err := readline.New(p.String())
	if err != nil {
		return "", err
	}
	defer rl.Close()
	response, err := rl.Readline()
	if err != nil {
		return "", err
	}
	normalized := strings.ToLower(strings.TrimSpace(response))
	for _, c := range constraints {
		if normalized == c {
			return normalized, nil
		}
	}
	// empty or unexpected input picks the default
	return constraints[0], nil
}
