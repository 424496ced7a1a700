package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptLine displays a prompt and reads a full line of input. The returned
// string is trimmed of surrounding whitespace (including the newline).
func PromptLine(in io.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question and accepts "y" or "yes" (case-insensitive).
func confirm(in io.Reader, prompt string) bool {
	answer, err := PromptLine(in, prompt)
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
